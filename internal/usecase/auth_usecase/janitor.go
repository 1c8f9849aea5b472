package auth

import (
	"context"
	"time"

	"divops/internal/metrics"
	"divops/internal/pkg/logctx"
)

// 期限切れsessionを削除する。参照時の期限判定とは独立
func (u *Usecase) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := u.sessions.DeleteExpired(ctx, u.clock.Now())
	if err != nil {
		return 0, err
	}
	metrics.SessionsPurged(n)
	return n, nil
}

// RunJanitor はctxが終わるまでinterval毎にPurgeExpiredSessionsを呼ぶ。
// interval <= 0 なら何もしない。
func (u *Usecase) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	log := logctx.From(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := u.PurgeExpiredSessions(ctx)
			if err != nil {
				log.Error("purge expired sessions", "err", err)
				continue
			}
			if n > 0 {
				log.Info("purged expired sessions", "count", n)
			}
		}
	}
}
