package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/otclogin/internal/app"
)

// shutdownGrace bounds how long in-flight logins may take to finish.
const shutdownGrace = 10 * time.Second

// @title           OTC Login API
// @version         1.0
// @description     OTC Login signs users in with a one-time code sent to their email.
// @contact.name    Contact Support
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
func main() {
	application := app.New()
	<-application.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	application.Stop(ctx)
}
