package main

import (
	"fmt"
	"os"

	"ecanteen/internal/app"
)

// @title          E-Canteen API
// @version        1.0
// @description    Food ordering backend: accounts with email OTP, catalog, orders and receipts.
// @BasePath       /api
// @securityDefinitions.apikey  BearerAuth
// @in             header
// @name           Authorization
func main() {
	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
