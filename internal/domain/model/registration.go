package model

// 会員登録の入力（gateway → User Directory にもこの形で渡す）
type Registration struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Birthdate string `json:"birthdate,omitempty"`
	Password  string `json:"password"`
}
