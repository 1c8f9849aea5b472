package auth

import (
	"context"
	"time"

	"divops/internal/domain/model"
	"divops/internal/infra/token"
)

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(identity string, extra token.Extra) (token.AccessToken, error)
}

// usecaseがValidatorInterfaceに依存する約束
type Validator interface {
	ValidateSignUp(ctx context.Context, in model.Registration) error
	ValidateSignIn(ctx context.Context, email string, password string) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}
