package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/ui/backend/sim"
	"github.com/odvcencio/lattice/pkg/ui/persist"
	"github.com/odvcencio/lattice/pkg/ui/runtime"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions(nil)
	require.NoError(t, err)
	assert.True(t, opts.watch)
	assert.Empty(t, opts.configPath)

	opts, err = parseOptions([]string{"-theme", "mono", "-inline", "-metrics", ":9000", "-watch=false"})
	require.NoError(t, err)
	assert.Equal(t, "mono", opts.themeName)
	assert.True(t, opts.inline)
	assert.Equal(t, ":9000", opts.metrics)
	assert.False(t, opts.watch)

	_, err = parseOptions([]string{"-bogus"})
	assert.Error(t, err)
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, exitCodeForError(nil))
	assert.Equal(t, 1, exitCodeForError(errors.New("plain")))
	assert.Equal(t, exitConfig, exitCodeForError(withExitCode(errors.New("bad"), exitConfig)))
	assert.Nil(t, withExitCode(nil, exitRuntime))

	assert.Equal(t, exitConfig, exitCodeForError(lerrors.New(lerrors.ErrCodeConfigInvalid, "bad theme")))
	assert.Equal(t, exitRuntime, exitCodeForError(fmt.Errorf("run: %w", lerrors.New(lerrors.ErrCodeOutputWrite, "closed"))))
	assert.Equal(t, exitRuntime, exitCodeForError(withExitCode(lerrors.New(lerrors.ErrCodeConfigLoad, "x"), exitRuntime)), "explicit status wins")
}

func TestDemo_NavigatesPersistsAndQuits(t *testing.T) {
	store, err := persist.Open(t.TempDir())
	require.NoError(t, err)

	be := sim.New(80, 20)
	d := newDemo(store, theme.Dark(), 0)
	app := runtime.NewApp(runtime.AppConfig{
		Backend: be,
		Root:    d.root,
		Env:     d.environment(),
		Update:  d.update,
		Keys:    d.globalKeys,
	})
	require.NoError(t, d.attach(app))
	defer d.detach()

	errc := make(chan error, 1)
	go func() { errc <- app.Run(context.Background()) }()

	eventually := func(cond func() bool, msg string) {
		t.Helper()
		require.Eventually(t, cond, 3*time.Second, 5*time.Millisecond, msg)
	}

	eventually(func() bool { return be.ContainsText("Pages") && be.ContainsText("lattice") }, "overview renders")

	be.InjectKeyRune('2')
	eventually(func() bool { return be.ContainsText("func Fib") }, "code page renders")

	eventually(func() bool {
		var p int
		ok, err := store.Load("demo.page", &p)
		return err == nil && ok && p == 1
	}, "selected page is saved")

	be.InjectKeyRune('q')
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("demo did not quit")
	}
}

func TestDemo_RestoresSavedPage(t *testing.T) {
	store, err := persist.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save("demo.page", 3))

	be := sim.New(80, 20)
	d := newDemo(store, theme.Dark(), 0)
	app := runtime.NewApp(runtime.AppConfig{Backend: be, Root: d.root, Env: d.environment()})
	require.NoError(t, d.attach(app))
	defer d.detach()

	assert.Equal(t, 3, d.page.Get())
	assert.Equal(t, "About", pages[d.page.Get()].title)
}

func TestDemo_GlobalKeysCycleTheme(t *testing.T) {
	be := sim.New(40, 10)
	d := newDemo(nil, theme.Dark(), 0)
	app := runtime.NewApp(runtime.AppConfig{Backend: be, Root: d.root, Env: d.environment()})
	require.NoError(t, d.attach(app))

	require.True(t, d.globalKeys(terminal.Char('t')))
	assert.Equal(t, "light", d.theme.Name)
	assert.Equal(t, "theme: light", d.status.Get())

	require.True(t, d.globalKeys(terminal.Char('4')))
	assert.Equal(t, 3, d.page.Get())

	assert.False(t, d.globalKeys(terminal.Char('9')), "no page nine")
}
