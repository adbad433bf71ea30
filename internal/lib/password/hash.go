// Package password реализует хеширование и проверку паролей на bcrypt.
//
// Hasher хранит стоимость хеширования и умеет выполнять «пустую» проверку,
// чтобы время ответа не зависело от того, найден ли пользователь.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch возвращается, если пароль не соответствует хэшу.
var ErrMismatch = errors.New("password does not match")

// Hasher вычисляет и сравнивает bcrypt-хэши с заданной стоимостью.
type Hasher struct {
	cost      int
	dummyHash []byte
}

// NewHasher создаёт Hasher. Стоимость вне допустимого диапазона bcrypt заменяется на bcrypt.DefaultCost.
func NewHasher(cost int) (*Hasher, error) {
	const op = "password.NewHasher"
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Hasher{cost: cost, dummyHash: dummy}, nil
}

// Cost возвращает используемую стоимость bcrypt.
func (h *Hasher) Cost() int {
	return h.cost
}

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
// Соль генерируется bcrypt для каждого хэша.
func (h *Hasher) GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil при совпадении, ErrMismatch при несовпадении и
// обёрнутую ошибку bcrypt, если хэш повреждён.
func (h *Hasher) CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CompareDummy выполняет сравнение с заранее вычисленным хэшем и всегда
// возвращает ErrMismatch. Вызывается, когда пользователь не найден.
func (h *Hasher) CompareDummy(externalPassword string) error {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(externalPassword))
	return fmt.Errorf("password.CompareDummy: %w", ErrMismatch)
}
