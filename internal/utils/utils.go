package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/luckywheel-vn/luckywheel-backend/internal/config"
)

// couponAlphabet excludes nothing on purpose: codes match what the discount
// platform accepts and what the admin table has always displayed.
const couponAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Vietnamese mobile numbers: leading 0, carrier digit 3/5/7/8/9, 8 more digits
var phoneRegex = regexp.MustCompile(`^0[35789][0-9]{8}$`)

// GenerateCouponCode generates a random uppercase alphanumeric coupon code
func GenerateCouponCode(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(couponAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = couponAlphabet[n.Int64()]
	}
	return string(b), nil
}

// NormalizePhone strips whitespace from a phone number
func NormalizePhone(phone string) string {
	return strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
}

// ValidatePhone reports whether phone is a valid Vietnamese mobile number
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// HashPhone hashes a phone number with the shared pepper. The pepper must be
// the same value in every environment that reads or writes these hashes.
func HashPhone(phone, pepper string) string {
	sum := sha256.Sum256([]byte(phone + pepper))
	return hex.EncodeToString(sum[:])
}

// MaskPhone masks a phone number for display: 0912345678 -> 091***5678
func MaskPhone(phone string) string {
	if len(phone) < 7 {
		return phone
	}
	return phone[:3] + "***" + phone[len(phone)-4:]
}

// GenerateJWT generates a signed admin token
func GenerateJWT(userID, email, role string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(time.Second * time.Duration(cfg.JWT.ExpiresIn)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// ValidateJWT parses and validates an admin token
func ValidateJWT(tokenString string, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
