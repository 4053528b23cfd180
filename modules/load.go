package modules

import (
	"github.com/iota-uz/crewplan/modules/planning"
	"github.com/iota-uz/crewplan/pkg/application"
)

var (
	BuiltInModules = []application.Module{
		planning.NewModule(nil),
	}
)

func Load(app application.Application, externalModules ...application.Module) error {
	return application.LoadModules(app, externalModules...)
}
