package app

import (
	"github.com/specialistvlad/assetpipe/internal/registry"
	"github.com/specialistvlad/assetpipe/modules/inline"
	"github.com/specialistvlad/assetpipe/modules/params"
	"github.com/specialistvlad/assetpipe/modules/raw"
	"github.com/specialistvlad/assetpipe/modules/text"
)

// coreModules is the definitive list of all modules that are compiled into
// the assetpipe binary. WebAssembly plugins are added on top of them.
var coreModules = []registry.Module{
	&raw.Module{},
	&text.Module{},
	&inline.Module{},
	&params.Module{},
}
