package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DeviceClaims identifica o aparelho e a filial na exportação.
type DeviceClaims struct {
	DeviceID string `json:"device_id"`
	Filial   string `json:"filial"`
	Estoque  string `json:"estoque"`
	jwt.RegisteredClaims
}

// GenerateDeviceToken assina um bearer HS256 com o apiToken da filial.
// O backend valida com o mesmo segredo por filial. Filial sem apiToken
// não chama isto: o export usa o bearer "dev" de desenvolvimento.
func GenerateDeviceToken(secret, deviceID, filial, estoque string) (string, error) {
	claims := &DeviceClaims{
		DeviceID: deviceID,
		Filial:   filial,
		Estoque:  estoque,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 1 dia
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
