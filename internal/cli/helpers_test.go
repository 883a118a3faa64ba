package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/darshit3596/shreejida/internal/auth"
	"github.com/darshit3596/shreejida/internal/filehandle"
	"github.com/darshit3596/shreejida/internal/testutil"
)

const testConfig = `log_level: error
shop:
  name: Test Motors
  tag_line: Tyres and service
  address: 1 Ring Road, Surat
  signatory: Test Motors
  term1: Goods once sold will not be taken back.
  term2: Warranty as per manufacturer.
  term3: Subject to Surat jurisdiction.
`

// seedScript logs in as the first user, stocks two items, issues one
// invoice and saves.
const seedScript = `login
admin
secret
add-item
Tyre 90/90
10
1500
2
add-item
Puncture repair
-1
100
0
new-invoice
Ramesh Patel
Activa
GJ01AB1234
9876543210
12000

Tyre 90/90
2

Puncture repair
1


18
50

save
quit
`

var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

// cliHarness runs commands against one in-memory filesystem, so state
// carries over between invocations the way it does between program runs.
type cliHarness struct {
	t      *testing.T
	fs     *testutil.MemFS
	host   *Host
	config string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(testConfig), 0o644))

	fs := testutil.NewMemFS()
	return &cliHarness{
		t:  t,
		fs: fs,
		host: &Host{
			Slot:     testutil.NewMemorySlot(),
			Resolver: fs,
			Locate: func(path string) (filehandle.Handle, error) {
				return fs.File(path), nil
			},
			Hasher: auth.BcryptHasher{Cost: bcrypt.MinCost},
			IDs:    testutil.NewSequenceIDs("item"),
			Clock:  testutil.FixedClock{T: testNow},
		},
		config: cfg,
	}
}

// run executes one command line with stdin as its input.
func (h *cliHarness) run(stdin string, args ...string) (stdout, stderr string, err error) {
	h.t.Helper()
	cmd := NewRootCommandWith(&RootOptions{Host: h.host})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", h.config}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// mustRun is run that fails the test on error.
func (h *cliHarness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run(stdin, args...)
	require.NoError(h.t, err, "stderr: %s", errOut)
	return out
}

// seeded returns a harness with shop.db created and filled by seedScript.
func seeded(t *testing.T) *cliHarness {
	t.Helper()
	h := newHarness(t)
	h.mustRun("", "new", "shop.db")
	h.mustRun(seedScript, "shell")
	return h
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
