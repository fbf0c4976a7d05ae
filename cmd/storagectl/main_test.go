package main

import (
	"bytes"
	"context"
	"flag"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/storage"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func setStorageEnv(t *testing.T) {
	t.Setenv("STORAGE_ENDPOINT", "localhost")
	t.Setenv("STORAGE_PORT", "9000")
	t.Setenv("STORAGE_USE_SSL", "false")
	t.Setenv("STORAGE_ACCESS_KEY", "minioadmin")
	t.Setenv("STORAGE_SECRET_KEY", "minioadmin")
	t.Setenv("STORAGE_DRIVER", "minio")
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"storagectl"}, args...))
	return out.String(), err
}

func TestFileStem(t *testing.T) {
	tests := map[string]string{
		"/tmp/cv.pdf":         "cv",
		"photos/me.final.png": "me.final",
		"noext":               "noext",
	}
	for in, want := range tests {
		assert.Equal(t, want, fileStem(in), in)
	}
}

func TestPutValidatesArguments(t *testing.T) {
	setStorageEnv(t)

	_, err := runApp(t, "put", "avatars", "user-1", "a.png")
	require.Error(t, err)
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.ExitCode())
	assert.Contains(t, err.Error(), "avatars")

	_, err = runApp(t, "put", "pictures", "user-1")
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.ExitCode())
}

func TestRemoveNeedsPrefix(t *testing.T) {
	setStorageEnv(t)

	_, err := runApp(t, "rm")
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.ExitCode())
}

func TestMissingStorageKeyFailsBeforeCommand(t *testing.T) {
	setStorageEnv(t)
	t.Setenv("STORAGE_ACCESS_KEY", "")

	_, err := runApp(t, "ls", "user-1/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_ACCESS_KEY")
}

func TestStorageCommandsCloseCollaborators(t *testing.T) {
	before := reflect.ValueOf(initStorage).Pointer()
	after := reflect.ValueOf(closeStorage).Pointer()

	var walk func(cmds []*cli.Command)
	seen := 0
	walk = func(cmds []*cli.Command) {
		for _, cmd := range cmds {
			walk(cmd.Subcommands)
			if cmd.Before == nil || reflect.ValueOf(cmd.Before).Pointer() != before {
				continue
			}
			seen++
			require.NotNil(t, cmd.After, cmd.Name)
			assert.Equal(t, after, reflect.ValueOf(cmd.After).Pointer(), cmd.Name)
		}
	}
	walk(newApp().Commands)
	assert.Equal(t, 5, seen)
}

func TestInitStorageWiresPresignCache(t *testing.T) {
	setStorageEnv(t)
	mr := miniredis.RunT(t)
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())

	c := cli.NewContext(newApp(), flag.NewFlagSet("test", flag.ContinueOnError), nil)
	require.NoError(t, initStorage(c))

	collaborators, ok := c.Context.Value(types.CollaboratorsKey).(*storage.Collaborators)
	require.True(t, ok)
	require.NoError(t, collaborators.Presign.Set(context.Background(), "user-1/a.pdf", "https://signed", time.Hour))
	assert.True(t, mr.Exists("storage:presign:user-1/a.pdf"))

	_, err := storageFrom(c)
	require.NoError(t, err)
	require.NoError(t, closeStorage(c))
}

func TestInitStorageFailsWhenLedgerUnreachable(t *testing.T) {
	setStorageEnv(t)
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "1")

	_, err := runApp(t, "ls", "user-1/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect database")
}
