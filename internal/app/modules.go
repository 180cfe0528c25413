package app

import (
	"github.com/vk/palacegrid/internal/registry"
	"github.com/vk/palacegrid/modules/boundary"
	"github.com/vk/palacegrid/modules/postprocessing"
	"github.com/vk/palacegrid/modules/solver"
)

// coreModules is the definitive list of all modules that are compiled into
// the palacegrid binary.
var coreModules = []registry.Module{
	&boundary.Module{},
	&postprocessing.Module{},
	&solver.Module{},
}
