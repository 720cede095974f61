package testutil

import (
	"testing"

	"github.com/junioryono/ioc"
	"github.com/stretchr/testify/require"
)

// Definition is a constructor registration used across tests
type Definition struct {
	Name    string
	Target  any
	Options []ioc.DefineOption
}

// Definitions lists the fixture constructors. Types not listed here are
// built from their zero value.
var Definitions = []Definition{
	{
		Name:    "Alpha",
		Target:  NewAlpha,
		Options: []ioc.DefineOption{ioc.Named("alpha_class"), ioc.Params("arrayAccess", "stack")},
	},
	{
		Name:    "Mailer",
		Target:  NewMailer,
		Options: []ioc.DefineOption{ioc.Named("mailer"), ioc.Params("transport", "host", "port"), ioc.Default("port", 25)},
	},
	{
		Name:    "Reporter",
		Target:  NewReporter,
		Options: []ioc.DefineOption{ioc.Params("logger", "title"), ioc.Default("logger", nil), ioc.Default("title", "report")},
	},
	{
		Name:    "PhotoController",
		Target:  NewPhotoController,
		Options: []ioc.DefineOption{ioc.Named("photos"), ioc.Params("fs")},
	},
	{
		Name:    "VideoController",
		Target:  NewVideoController,
		Options: []ioc.DefineOption{ioc.Named("videos"), ioc.Params("fs")},
	},
	{
		Name:    "Gallery",
		Target:  NewGallery,
		Options: []ioc.DefineOption{ioc.Params("photos", "fs")},
	},
	{Name: "CycleA", Target: NewCycleA},
	{Name: "CycleB", Target: NewCycleB},
	{Name: "Broken", Target: NewBroken},
	{Name: "Panicky", Target: NewPanicky},
	{Name: "Plugins", Target: NewPlugins, Options: []ioc.DefineOption{ioc.Params("names")}},
}

// DefineFixtures defines every fixture constructor on c
func DefineFixtures(t *testing.T, c *ioc.Container) {
	t.Helper()
	for _, d := range Definitions {
		require.NoError(t, c.Define(d.Target, d.Options...), "defining %s", d.Name)
	}
}
