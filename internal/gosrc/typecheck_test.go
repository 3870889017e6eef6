package gosrc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tagindex/pkg/types"
)

const taskSrc = `package api

import "github.com/mesh-intelligence/tagindex/pkg/catalog"

type Action interface {
	Run() error
}

type Level int

const (
	Low Level = iota
	High
)

const Untyped = 7

type Task struct {
	_ catalog.Indexable ` + "`targets:\"type\" bound:\"example.com/plug/api.Action\"`" + `

	Level Level ` + "`default:\"Low\"`" + `
}
`

const otherSrc = `package other

type Color int

const Red Color = 1
`

const workSrc = `package work

import (
	"io"

	"example.com/plug/api"
	"example.com/plug/other"
)

type Base struct{}

func (Base) Run() error    { return nil }
func (Base) Error() string { return "base" }

type Embeds struct{ Base }

type Wrong struct{}

func (Wrong) Run(int) string { return "" }

type PtrOnly struct{}

func (*PtrOnly) Run() error { return nil }

type File struct{ io.Closer }

//tagindex:mark api.Task{Level: api.High}
type Good struct{ Base }

//tagindex:mark api.Task{Level: api.NoSuchLevel}
type Missing struct{ Base }

//tagindex:mark api.Task{Level: api.Untyped}
type Loose struct{ Base }

//tagindex:mark api.Task{Level: other.Red}
type Foreign struct{ Base }

func Setup() {
	//tagindex:mark api.Task{}
	type Inner struct{ Embeds }
	_ = Inner{}
}
`

const (
	taskMarker = "example.com/plug/api.Task"
	action     = "example.com/plug/api.Action"
	workPkg    = "example.com/plug/work"
)

func loadTasks(t *testing.T) *Env {
	t.Helper()
	root := writeFiles(t, map[string]string{
		"go.mod":       "module example.com/plug\n\ngo 1.25\n",
		"api/api.go":   taskSrc,
		"other/c.go":   otherSrc,
		"work/work.go": workSrc,
	})
	pkgs, err := ResolvePackages([]string{root + "/..."})
	require.NoError(t, err)
	env, err := Load(pkgs)
	require.NoError(t, err)
	return env
}

func TestAssignable_MethodSignatures(t *testing.T) {
	env := loadTasks(t)

	assert.True(t, env.Assignable(workPkg+".Base", action))
	assert.False(t, env.Assignable(workPkg+".Wrong", action), "Run(int) string does not satisfy Run() error")
	assert.False(t, env.Assignable("*"+workPkg+".Wrong", action))
}

func TestAssignable_PromotedMethods(t *testing.T) {
	env := loadTasks(t)

	assert.True(t, env.Assignable(workPkg+".Embeds", action))
	assert.True(t, env.Assignable("*"+workPkg+".Embeds", action))
	assert.True(t, env.Assignable(workPkg+".Setup.Inner", action))
}

func TestAssignable_PointerReceiver(t *testing.T) {
	env := loadTasks(t)

	assert.True(t, env.Assignable("*"+workPkg+".PtrOnly", action))
	assert.True(t, env.Assignable(workPkg+".PtrOnly", action))
}

func TestAssignable_ExternalInterfaces(t *testing.T) {
	env := loadTasks(t)

	assert.True(t, env.Assignable(workPkg+".Base", "error"))
	assert.False(t, env.Assignable(workPkg+".Wrong", "error"))
	assert.True(t, env.Assignable(workPkg+".File", "io.Closer"))
	assert.False(t, env.Assignable(workPkg+".Base", "io.Closer"))
	assert.False(t, env.Assignable(workPkg+".Base", "example.com/unloaded.Action"))
}

func TestLoad_EnumConstants(t *testing.T) {
	env := loadTasks(t)

	els := env.Elements(taskMarker)
	ids := make([]string, len(els))
	for i, e := range els {
		ids[i] = e.Identity()
	}
	assert.Equal(t, []string{workPkg + ".Good", workPkg + ".Setup.Inner"}, ids)
	assert.Equal(t, types.EnumRef{Type: "example.com/plug/api.Level", Name: "High"}, els[0].Values["level"])

	bySubject := make(map[string]string)
	lines := make(map[string]int)
	for _, d := range env.Diagnostics() {
		bySubject[d.Subject] = d.Message
		lines[d.Subject] = d.Pos.Line
		assert.Equal(t, "work.go", filepath.Base(d.Pos.Filename))
	}
	require.Len(t, bySubject, 3)
	assert.Contains(t, bySubject[workPkg+".Missing"], "example.com/plug/api.NoSuchLevel is not a constant of example.com/plug/api.Level")
	assert.Contains(t, bySubject[workPkg+".Loose"], "has type untyped int")
	assert.Contains(t, bySubject[workPkg+".Foreign"], "example.com/plug/other.Red has type example.com/plug/other.Color")
	assert.Equal(t, 30, lines[workPkg+".Missing"])
	assert.Equal(t, 33, lines[workPkg+".Loose"])
	assert.Equal(t, 36, lines[workPkg+".Foreign"])
}
