package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type profile struct {
	Email     string `json:"email" validate:"required,email"`
	Cpf       string `json:"cpf" validate:"required,cpf"`
	Phone     string `json:"phone" validate:"required,phone_br"`
	BirthDate string `json:"birthDate" validate:"required,adult"`
	Country   string `json:"country" validate:"required,country"`
}

func valid() profile {
	return profile{
		Email:     "guest@example.com",
		Cpf:       "123.456.789-09",
		Phone:     "(11) 91234-5678",
		BirthDate: "1990-04-12",
		Country:   "BR",
	}
}

func TestStruct(t *testing.T) {
	p := valid()
	assert.NoError(t, Struct(&p))

	p.Cpf = "12345678909"
	p.Phone = "11912345678"
	err := Struct(&p)
	assert.EqualError(t, err, "cpf cpf; phone phone_br")

	p = valid()
	p.Country = "Atlantis"
	assert.EqualError(t, Struct(&p), "country country")

	p = valid()
	p.BirthDate = time.Now().UTC().AddDate(-17, 0, 0).Format(dateLayout)
	assert.EqualError(t, Struct(&p), "birthDate adult")

	p.BirthDate = "12/04/1990"
	assert.Error(t, Struct(&p))

	assert.Error(t, Struct(nil))
	assert.Error(t, Struct("text"))
}

func TestAge(t *testing.T) {
	birth := time.Date(2008, 10, 18, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 17, Age(birth, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, Age(birth, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, Age(birth, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}
