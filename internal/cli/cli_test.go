package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/turtle/internal/config"
	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/program"
)

const squareProgram = `name: square
canvas:
  width: 200
  height: 200
steps:
  - pencolor: red
  - op: forward
    args: [50]
  - left
  - forward: 50
  - left: 90
  - forward: 50
`

func writeProgram(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOpenBackend(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		b, err := OpenBackend(config.Default())
		require.NoError(t, err)
		assert.NotNil(t, b.Store)
		assert.Nil(t, b.Locker)
		assert.NoError(t, b.Close())
	})

	t.Run("file", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Driver = config.StoreFile
		cfg.Store.Dir = t.TempDir()

		b, err := OpenBackend(cfg)
		require.NoError(t, err)
		require.NoError(t, b.Store.Save(context.Background(), &domain.Record{ID: "s"}))
		ids, err := b.Store.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"s"}, ids)
	})

	t.Run("redis with lock", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.Default()
		cfg.Store.Driver = config.StoreRedis
		cfg.Store.Redis.Addr = mr.Addr()
		cfg.Store.Redis.Lock = true

		b, err := OpenBackend(cfg)
		require.NoError(t, err)
		defer b.Close()
		require.NotNil(t, b.Locker)

		mgr := NewManager(cfg, b, logging.NewNop(), nil)
		_, cmds, err := mgr.Do(context.Background(), "r", nil)
		require.NoError(t, err)
		assert.Len(t, cmds, 1)
		assert.True(t, mr.Exists("turtle:session:r"))
	})

	t.Run("encrypted file store", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Driver = config.StoreFile
		cfg.Store.Dir = t.TempDir()
		cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

		b, err := OpenBackend(cfg)
		require.NoError(t, err)
		mgr := NewManager(cfg, b, logging.NewNop(), nil)
		_, _, err = mgr.Do(context.Background(), "sealed", nil)
		require.NoError(t, err)

		raw, err := os.ReadFile(filepath.Join(cfg.Store.Dir, "sealed.json"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"sealed"`)
		assert.NotContains(t, string(raw), `"reset"`)

		rec, err := b.Store.Load(context.Background(), "sealed")
		require.NoError(t, err)
		require.Len(t, rec.Commands, 1)
		assert.Equal(t, domain.CommandReset, rec.Commands[0].Type)
	})

	t.Run("bad encryption key", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.EncryptionKey = "c2hvcnQ="
		_, err := OpenBackend(cfg)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Driver = "etcd"
		_, err := OpenBackend(cfg)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	_, err := NewLogger(cfg)
	require.NoError(t, err)

	cfg.LogLevel = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}

func TestRun_Formats(t *testing.T) {
	path := writeProgram(t, squareProgram)

	var svg bytes.Buffer
	require.NoError(t, Run(context.Background(), RunOptions{ProgramPath: path, Output: &svg, Config: config.Default()}))
	assert.Contains(t, svg.String(), `width="200" height="200"`)
	assert.Equal(t, 3, bytes.Count(svg.Bytes(), []byte(`<line`)))
	assert.Contains(t, svg.String(), `stroke="red"`)

	var js bytes.Buffer
	require.NoError(t, Run(context.Background(), RunOptions{ProgramPath: path, Format: FormatJSON, Output: &js, Config: config.Default()}))
	var cmds []domain.Command
	require.NoError(t, json.Unmarshal(js.Bytes(), &cmds))
	// reset, pencolor, three lines and two turns.
	assert.Len(t, cmds, 7)

	var md bytes.Buffer
	require.NoError(t, Run(context.Background(), RunOptions{ProgramPath: path, Format: FormatMarkdown, Output: &md, Config: config.Default()}))
	assert.Contains(t, md.String(), "# square")
	assert.Contains(t, md.String(), "| Steps | 6 |")

	err := Run(context.Background(), RunOptions{ProgramPath: path, Format: "png", Output: io.Discard, Config: config.Default()})
	assert.ErrorContains(t, err, "unknown format")
}

func TestRun_FailingStepStillWritesOutput(t *testing.T) {
	path := writeProgram(t, "- forward: 10\n- fly: 3\n- forward: 10\n")

	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{ProgramPath: path, Format: FormatJSON, Output: &out, Config: config.Default()})
	require.Error(t, err)
	assert.ErrorIs(t, err, program.ErrUnknownOperation)

	var stepErr *program.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.Index)

	var cmds []domain.Command
	require.NoError(t, json.Unmarshal(out.Bytes(), &cmds))
	assert.Len(t, cmds, 2)
}

func TestRun_SessionContinuesAcrossRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Driver = config.StoreFile
	cfg.Store.Dir = t.TempDir()
	path := writeProgram(t, "- forward: 10\n")

	run := func() []domain.Command {
		var out bytes.Buffer
		require.NoError(t, Run(context.Background(), RunOptions{
			ProgramPath: path,
			Format:      FormatJSON,
			SessionID:   "persisted",
			Output:      &out,
			Config:      cfg,
			Logger:      logging.NewNop(),
		}))
		var cmds []domain.Command
		require.NoError(t, json.Unmarshal(out.Bytes(), &cmds))
		return cmds
	}

	first := run()
	require.Len(t, first, 2)

	second := run()
	require.Len(t, second, 3)
	assert.Equal(t, uint64(3), second[2].ID)
	assert.Equal(t, 10.0, second[2].Y)
}

func TestRun_MissingProgram(t *testing.T) {
	err := Run(context.Background(), RunOptions{ProgramPath: "nope.yaml", Output: io.Discard, Config: config.Default()})
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	path := writeProgram(t, squareProgram)

	var out bytes.Buffer
	require.NoError(t, Inspect(InspectOptions{ProgramPath: path, Style: "notty", WordWrap: 100, Output: &out, Config: config.Default()}))
	assert.Contains(t, out.String(), "square")
	assert.Contains(t, out.String(), "Commands")
}

func TestServe_GracefulShutdown(t *testing.T) {
	b, err := OpenBackend(config.Default())
	require.NoError(t, err)
	handler := NewHTTPHandler(config.Default(), b, logging.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, ln, handler, logging.NewNop()) }()

	base := "http://" + ln.Addr().String()
	res, err := http.Get(base + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Contains(t, string(body), "go_goroutines")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}

func TestSessionCommands(t *testing.T) {
	ctx := context.Background()
	b, err := OpenBackend(config.Default())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, ListSessions(ctx, b.Store, &out))
	assert.Equal(t, "No sessions found.\n", out.String())

	mgr := NewManager(config.Default(), b, logging.NewNop(), nil)
	_, _, err = mgr.Do(ctx, "a", nil)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, ListSessions(ctx, b.Store, &out))
	assert.Contains(t, out.String(), "- a")

	out.Reset()
	require.NoError(t, ShowSession(ctx, b.Store, "a", &out))
	var rec domain.Record
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "a", rec.ID)
	assert.Equal(t, 320, rec.Canvas.Width)

	assert.ErrorIs(t, ShowSession(ctx, b.Store, "missing", io.Discard), domain.ErrSessionNotFound)

	out.Reset()
	require.NoError(t, RemoveSessions(ctx, b.Store, []string{"a"}, &out))
	assert.Contains(t, out.String(), "Removed session 'a'")
}

func TestRun_ExamplePrograms(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "programs", "*"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, Run(context.Background(), RunOptions{ProgramPath: path, Output: &out, Config: config.Default()}))
			assert.Contains(t, out.String(), "<svg")
		})
	}
}
