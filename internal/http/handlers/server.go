package handlers

import (
	"fmt"

	"github.com/rogerio-castellano/eshop/internal/auth"
	"github.com/rogerio-castellano/eshop/internal/repo"
	"go.uber.org/zap"
)

// Server holds the dependencies of the HTML pages and the JSON API.
type Server struct {
	products repo.ProductRepository
	issuer   *auth.Issuer
	admin    auth.Credentials
	pages    *pages
	lggr     *zap.Logger
}

func NewServer(products repo.ProductRepository, issuer *auth.Issuer, admin auth.Credentials, lggr *zap.Logger) (*Server, error) {
	if lggr == nil {
		lggr = zap.NewNop()
	}
	p, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{
		products: products,
		issuer:   issuer,
		admin:    admin,
		pages:    p,
		lggr:     lggr,
	}, nil
}
