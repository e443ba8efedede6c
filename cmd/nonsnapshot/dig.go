package main

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/nonsnapshot/internal"
	"github.com/rios0rios0/nonsnapshot/internal/infrastructure/controllers"
)

func injectAppContext() (*internal.AppInternal, *controllers.UpdateController) {
	container := dig.New()

	// Register all providers
	if err := internal.RegisterProviders(container); err != nil {
		panic(err)
	}

	// Invoke to get AppInternal and the controller bound to the root command
	var (
		appInternal      *internal.AppInternal
		updateController *controllers.UpdateController
	)
	if err := container.Invoke(func(ai *internal.AppInternal, uc *controllers.UpdateController) {
		appInternal = ai
		updateController = uc
	}); err != nil {
		panic(err)
	}

	return appInternal, updateController
}
