// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/epcentra/pkg/log"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "epcentra"

// ErrTokenExpired is returned by ParseToken for expired access tokens.
var ErrTokenExpired = jwt.ErrTokenExpired

type AuthClaims struct {
	UserId string `json:"userId"`
	jwt.RegisteredClaims
}

// GenToken 生成 access_token 和 refresh_token
func GenToken(userId string, secretKey []byte, accessExpire, refreshExpire time.Duration) (aToken, rToken string, err error) {
	if userId == "" {
		return "", "", errors.New("user id is empty")
	}
	now := time.Now()

	aClaims := &AuthClaims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userId,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessExpire)),
		},
	}
	aToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, aClaims).SignedString(secretKey)
	if err != nil {
		log.Errorw("sign access token failed", "userId", userId, "error", err)
		return "", "", err
	}

	rClaims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userId,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(refreshExpire)),
	}
	rToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, rClaims).SignedString(secretKey)
	if err != nil {
		log.Errorw("sign refresh token failed", "userId", userId, "error", err)
		return "", "", err
	}

	return aToken, rToken, nil
}

// ParseToken 校验 access_token
func ParseToken(aToken, secretKey string) (*AuthClaims, error) {
	claims := new(AuthClaims)
	token, err := jwt.ParseWithClaims(aToken, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.UserId == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
