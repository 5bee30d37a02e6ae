package controllers_fx

import (
	"go.uber.org/fx"
	"wander/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewTourController))
