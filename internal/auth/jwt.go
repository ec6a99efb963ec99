package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RolePlayer  = "player"
	RoleGateway = "gateway"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify either a player (Address is their wallet) or a messaging
// gateway that relays turns on behalf of many players.
type Claims struct {
	Address     string `json:"addr,omitempty"`
	DisplayName string `json:"name,omitempty"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsGateway() bool { return c.Role == RoleGateway }

type Service struct {
	secret []byte
}

func NewService(secret []byte) *Service {
	return &Service{secret: secret}
}

func (s *Service) SignPlayer(address, displayName string, ttl time.Duration) (string, error) {
	return s.sign(Claims{Address: address, DisplayName: displayName, Role: RolePlayer}, ttl)
}

func (s *Service) SignGateway(name string, ttl time.Duration) (string, error) {
	return s.sign(Claims{DisplayName: name, Role: RoleGateway}, ttl)
}

func (s *Service) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.Address,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Service) Verify(token string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Role != RolePlayer && claims.Role != RoleGateway {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}
	return claims, nil
}
