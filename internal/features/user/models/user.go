package models

import "time"

// User представляет учётную запись приложения, один к одному с identity
// Telegram. Банковские реквизиты опциональны и заполняются в профиле.
type User struct {
	ID         string  `json:"id"`
	TelegramID int64   `json:"user_id"`
	Name       string  `json:"name"`
	Username   *string `json:"username"`
	Avatar     *string `json:"avatar"`

	// Реквизиты
	INN           *string `json:"inn"`
	CorporateCard *string `json:"corporate_card"`
	AccountNumber *string `json:"account_number"`
	BIK           *string `json:"bik"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRequisites reports whether any banking requisite is filled in.
func (u *User) HasRequisites() bool {
	if u == nil {
		return false
	}
	for _, field := range []*string{u.INN, u.CorporateCard, u.AccountNumber, u.BIK} {
		if field != nil && *field != "" {
			return true
		}
	}
	return false
}

// NewUserInsert — данные для создания пользователя; id и временные метки
// назначает сервер.
type NewUserInsert struct {
	TelegramID int64   `json:"user_id"`
	Name       string  `json:"name"`
	Username   *string `json:"username"`
	Avatar     *string `json:"avatar"`
}

// ProfilePatch — явное частичное обновление профиля.
type ProfilePatch struct {
	Name          *string `json:"name,omitempty"`
	INN           *string `json:"inn,omitempty"`
	CorporateCard *string `json:"corporate_card,omitempty"`
	AccountNumber *string `json:"account_number,omitempty"`
	BIK           *string `json:"bik,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}
