package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost - стоимость bcrypt для хэшей паролей
const Cost = 10

var ErrPasswordTooLong = errors.New("пароль длиннее 72 байт")

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}

		return "", err
	}

	return string(hash), nil
}

func VerifyPassword(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}

// DummyHash сравнивается с паролем, когда пользователь не найден.
var DummyHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte("planit-dummy-password"), Cost)
	if err != nil {
		panic(err)
	}

	return string(hash)
}()
