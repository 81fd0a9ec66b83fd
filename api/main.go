package main

import (
	"os"
)

// @title eshop API
// @version 1.0
// @description Product catalogue API backing the eshop web pages.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
