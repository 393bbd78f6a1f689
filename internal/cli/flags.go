package cli

import (
	"github.com/alecthomas/kong"
	"github.com/melih/patchwork-docker/internal/core/domain"
)

// MappingFlag accumulates repeated mapping values in the order given.
type MappingFlag struct {
	domain.Mapping
}

// Decode implements kong.MapperValue.
func (m *MappingFlag) Decode(ctx *kong.DecodeContext) error {
	var value string
	if err := ctx.Scan.PopValueInto("mapping", &value); err != nil {
		return err
	}
	parsed, err := domain.ParseMapping(value)
	if err != nil {
		return err
	}
	m.Mapping = append(m.Mapping, parsed...)
	return nil
}

// ContextFlags are the flags describing how a context is assembled.
type ContextFlags struct {
	AdditionalFiles MappingFlag `short:"f" name:"additional-file" help:"File or directory to add, as SRC:DEST or a JSON object; DEST defaults to the base name of SRC. Repeatable; later entries overwrite earlier ones." placeholder:"SRC:DEST"`
	Patches         MappingFlag `short:"p" name:"patch" help:"Unified diff to apply, as PATCH:DEST or a JSON object. Repeatable; applied in order." placeholder:"PATCH:DEST"`
	BuildLocation   string      `short:"b" name:"build-location" help:"Empty directory to assemble the context in; it is never removed." placeholder:"DIR"`
}

func (f *ContextFlags) request(origin string) domain.PrepareRequest {
	return domain.PrepareRequest{
		Origin:          origin,
		AdditionalFiles: f.AdditionalFiles.Mapping,
		Patches:         f.Patches.Mapping,
		BuildDirectory:  f.BuildLocation,
	}
}
