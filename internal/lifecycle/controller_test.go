package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshit3596/shreejida/internal/filehandle"
	"github.com/darshit3596/shreejida/internal/model"
	"github.com/darshit3596/shreejida/internal/store"
	"github.com/darshit3596/shreejida/internal/testutil"
)

type fixture struct {
	c    *Controller
	fs   *testutil.MemFS
	slot *testutil.MemorySlot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fs := testutil.NewMemFS()
	slot := testutil.NewMemorySlot()
	c := New(filehandle.NewManager(slot, fs, fs), model.DefaultSettings())
	t.Cleanup(func() { c.Close() })
	return &fixture{c: c, fs: fs, slot: slot}
}

// storedRef returns the slot's current handle reference, "" if none.
func (f *fixture) storedRef(t *testing.T) string {
	t.Helper()
	ref, _, err := f.slot.Get(filehandle.SlotKey)
	require.NoError(t, err)
	return ref
}

// databaseBytes builds a database image, letting fn add rows first.
func databaseBytes(t *testing.T, fn func(ctx context.Context, s *store.Store)) []byte {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, model.DefaultSettings())
	require.NoError(t, err)
	defer s.Close()
	if fn != nil {
		fn(ctx, s)
	}
	data, err := s.Export(ctx)
	require.NoError(t, err)
	return data
}

func loadFile(t *testing.T, h *testutil.MemHandle) model.AppData {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, h.Data())
	require.NoError(t, err)
	defer s.Close()
	data, err := s.LoadAllData(ctx)
	require.NoError(t, err)
	return data
}

func TestInit_NoHandle(t *testing.T) {
	f := newFixture(t)

	st, err := f.c.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NeedsFile, st)
	assert.Equal(t, NeedsFile, f.c.State())
	assert.Empty(t, f.c.FileName())
}

func TestInit_EmptyFileGetsDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.fs.Add(testutil.NewMemHandleWithData("shop.db", nil))
	require.NoError(t, f.slot.Put(filehandle.SlotKey, h.Ref()))

	st, err := f.c.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, Ready, st)
	assert.Equal(t, "shop.db", f.c.FileName())

	n, err := f.c.CountRows(ctx, "settings")
	require.NoError(t, err)
	assert.Equal(t, len(model.SettingKeys), n)
	for _, table := range []string{"users", "invoices", "inventory"} {
		n, err := f.c.CountRows(ctx, table)
		require.NoError(t, err)
		assert.Zero(t, n, table)
	}

	data, err := f.c.LoadAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings().ShopName, data.Settings.ShopName)
	assert.Equal(t, int64(1), data.Settings.InvoiceCounter)
	assert.Zero(t, h.Commits, "init must not write the file")
}

func TestInit_ExistingFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := f.fs.Add(testutil.NewMemHandleWithData("shop.db", databaseBytes(t, func(ctx context.Context, s *store.Store) {
		require.NoError(t, s.AddUser(ctx, model.User{Username: "owner", PasswordHash: "x"}))
	})))
	require.NoError(t, f.slot.Put(filehandle.SlotKey, h.Ref()))

	st, err := f.c.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, Ready, st)

	data, err := f.c.LoadAllData(ctx)
	require.NoError(t, err)
	require.Len(t, data.Users, 1)
	assert.Equal(t, "owner", data.Users[0].Username)

	// second Init is a no-op
	st, err = f.c.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, Ready, st)
}

func TestInit_UnreadableFileClearsHandle(t *testing.T) {
	f := newFixture(t)
	h := f.fs.Add(testutil.NewMemHandleWithData("shop.db", []byte("data")))
	h.ReadErr = errors.New("disk gone")
	require.NoError(t, f.slot.Put(filehandle.SlotKey, h.Ref()))

	st, err := f.c.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NeedsFile, st)
	assert.Empty(t, f.storedRef(t))
}

func TestInit_CorruptFileClearsHandle(t *testing.T) {
	f := newFixture(t)
	h := f.fs.Add(testutil.NewMemHandleWithData("notes.db", []byte("this is not a database")))
	require.NoError(t, f.slot.Put(filehandle.SlotKey, h.Ref()))

	st, err := f.c.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NeedsFile, st)
	assert.Empty(t, f.storedRef(t))
	assert.Empty(t, f.c.FileName())
}

// undecodableRows holds statements that leave a structurally valid database
// whose rows cannot be read back.
var undecodableRows = map[string]string{
	"invoice items": `INSERT INTO invoices (id, customerName, date, items, status)
		VALUES ('SJM0000001', 'Ravi', '2024-03-15', 'not json', 'Paid')`,
	"setting value": `UPDATE settings SET value = 'not json' WHERE key = 'shopName'`,
}

func TestInit_UndecodableRowsClearHandle(t *testing.T) {
	for name, stmt := range undecodableRows {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			data, err := testutil.RewriteDatabase(databaseBytes(t, nil), stmt)
			require.NoError(t, err)
			h := f.fs.Add(testutil.NewMemHandleWithData("shop.db", data))
			require.NoError(t, f.slot.Put(filehandle.SlotKey, h.Ref()))

			st, err := f.c.Init(context.Background())
			require.NoError(t, err)
			assert.Equal(t, NeedsFile, st)
			assert.Empty(t, f.storedRef(t))
			assert.Empty(t, f.c.FileName())

			_, err = f.c.LoadAllData(context.Background())
			assert.ErrorIs(t, err, ErrNotReady)
		})
	}
}

func TestInit_UnresolvableHandleClearsHandle(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.slot.Put(filehandle.SlotKey, "mem://vanished.db"))

	st, err := f.c.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NeedsFile, st)
	assert.Empty(t, f.storedRef(t))
}

func TestInit_DeniedPermissionKeepsHandle(t *testing.T) {
	f := newFixture(t)
	h := f.fs.Add(testutil.NewMemHandleWithData("shop.db", databaseBytes(t, nil)))
	h.Query = filehandle.PermissionPrompt
	h.Request = filehandle.PermissionDenied
	require.NoError(t, f.slot.Put(filehandle.SlotKey, h.Ref()))

	st, err := f.c.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NeedsFile, st)
	assert.Equal(t, 1, h.RequestCalls)
	assert.Equal(t, h.Ref(), f.storedRef(t))
}

func TestCreateNewDatabaseFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fs.QueueSave("shop.db")

	ok, err := f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Ready, f.c.State())
	assert.Equal(t, "shop.db", f.c.FileName())
	assert.Equal(t, "mem://shop.db", f.storedRef(t))

	h := f.fs.File("shop.db")
	assert.Equal(t, 1, h.Commits)
	data := loadFile(t, h)
	assert.Equal(t, model.DefaultSettings().ShopName, data.Settings.ShopName)
	assert.Empty(t, data.Invoices)

	require.Len(t, f.fs.Options, 1)
	assert.Equal(t, filehandle.DefaultPickerOptions(), f.fs.Options[0])
}

func TestCreateNewDatabaseFile_Cancelled(t *testing.T) {
	f := newFixture(t)

	ok, err := f.c.CreateNewDatabaseFile(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Uninitialized, f.c.State())
	assert.Empty(t, f.storedRef(t))
}

func TestCreateNewDatabaseFile_RefusesWhenReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fs.QueueSave("a.db", "b.db")
	_, err := f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)

	ok, err := f.c.CreateNewDatabaseFile(ctx, false)
	assert.ErrorIs(t, err, ErrAlreadyReady)
	assert.False(t, ok)
	assert.Equal(t, "a.db", f.c.FileName())

	ok, err = f.c.CreateNewDatabaseFile(ctx, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b.db", f.c.FileName())
	assert.Equal(t, "mem://b.db", f.storedRef(t))
}

func TestCreateNewDatabaseFile_WriteFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	h := f.fs.File("shop.db")
	h.WriteErr = errors.New("read-only volume")
	f.fs.QueueSave("shop.db")

	ok, err := f.c.CreateNewDatabaseFile(context.Background(), false)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, Uninitialized, f.c.State())
	assert.Empty(t, f.storedRef(t))
}

func TestLoadDatabaseFromFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fs.Add(testutil.NewMemHandleWithData("old.db", databaseBytes(t, func(ctx context.Context, s *store.Store) {
		require.NoError(t, s.AddUser(ctx, model.User{Username: "owner", PasswordHash: "x"}))
	})))
	f.fs.QueueSave("new.db")
	f.fs.QueueOpen("old.db", "old.db")

	_, err := f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)

	ok, err := f.c.LoadDatabaseFromFile(ctx, false)
	assert.ErrorIs(t, err, ErrAlreadyReady)
	assert.False(t, ok)

	ok, err = f.c.LoadDatabaseFromFile(ctx, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Ready, f.c.State())
	assert.Equal(t, "old.db", f.c.FileName())
	assert.Equal(t, "mem://old.db", f.storedRef(t))

	data, err := f.c.LoadAllData(ctx)
	require.NoError(t, err)
	require.Len(t, data.Users, 1)
}

func TestLoadDatabaseFromFile_Corrupt(t *testing.T) {
	f := newFixture(t)
	f.fs.Add(testutil.NewMemHandleWithData("bad.db", []byte("garbage")))
	f.fs.QueueOpen("bad.db")

	ok, err := f.c.LoadDatabaseFromFile(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, NeedsFile, f.c.State())
	assert.Empty(t, f.storedRef(t))
}

func TestLoadDatabaseFromFile_UndecodableRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data, err := testutil.RewriteDatabase(databaseBytes(t, nil), undecodableRows["invoice items"])
	require.NoError(t, err)
	f.fs.Add(testutil.NewMemHandleWithData("bad.db", data))
	f.fs.QueueSave("shop.db")
	f.fs.QueueOpen("bad.db")

	_, err = f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)

	ok, err := f.c.LoadDatabaseFromFile(ctx, true)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, NeedsFile, f.c.State())
	assert.Empty(t, f.storedRef(t))
}

func TestLoadDatabaseFromFile_Cancelled(t *testing.T) {
	f := newFixture(t)

	ok, err := f.c.LoadDatabaseFromFile(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Uninitialized, f.c.State())
}

func TestSaveDatabaseToFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fs.QueueSave("shop.db")
	_, err := f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)

	require.NoError(t, f.c.AddUser(ctx, model.User{Username: "owner", PasswordHash: "x"}))
	h := f.fs.File("shop.db")
	assert.Empty(t, loadFile(t, h).Users, "mutations must not reach the file before a save")

	require.NoError(t, f.c.SaveDatabaseToFile(ctx))
	assert.Equal(t, 2, h.Commits)
	require.Len(t, loadFile(t, h).Users, 1)
}

func TestSaveDatabaseToFile_NoStore(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.c.SaveDatabaseToFile(context.Background()))
}

func TestSaveDatabaseToFile_HandleGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fs.QueueSave("shop.db")
	_, err := f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)
	require.NoError(t, f.slot.Delete(filehandle.SlotKey))

	err = f.c.SaveDatabaseToFile(ctx)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestSaveDatabaseToFile_WriteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fs.QueueSave("shop.db")
	_, err := f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)

	h := f.fs.File("shop.db")
	before := h.Data()
	h.WriteErr = errors.New("disk full")
	require.NoError(t, f.c.AddUser(ctx, model.User{Username: "owner", PasswordHash: "x"}))

	require.Error(t, f.c.SaveDatabaseToFile(ctx))
	assert.Equal(t, before, h.Data())
	assert.Equal(t, Ready, f.c.State())
}

func TestSaveDatabaseAs_DoesNotSwitchFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fs.QueueSave("shop.db", "backup.db")
	_, err := f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)
	require.NoError(t, f.c.AddUser(ctx, model.User{Username: "owner", PasswordHash: "x"}))

	ok, err := f.c.SaveDatabaseAs(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "shop.db", f.c.FileName())
	assert.Equal(t, "mem://shop.db", f.storedRef(t))
	require.Len(t, loadFile(t, f.fs.File("backup.db")).Users, 1)
	assert.Empty(t, loadFile(t, f.fs.File("shop.db")).Users)
}

func TestSaveDatabaseAs_NoStoreOrCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.c.SaveDatabaseAs(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	f.fs.QueueSave("shop.db")
	_, err = f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)

	ok, err = f.c.SaveDatabaseAs(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRowOperations_NotReady(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.c.LoadAllData(ctx)
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, f.c.AddUser(ctx, model.User{Username: "a"}), ErrNotReady)
	assert.ErrorIs(t, f.c.DeleteInvoice(ctx, "SJM0000001"), ErrNotReady)
	assert.ErrorIs(t, f.c.UpdateSettings(ctx, model.DefaultSettings()), ErrNotReady)
	_, err = f.c.CountRows(ctx, "users")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestOnStateChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var seen []State
	f.c.OnStateChange(func(s State) { seen = append(seen, s) })

	_, err := f.c.Init(ctx)
	require.NoError(t, err)
	f.fs.QueueSave("shop.db")
	_, err = f.c.CreateNewDatabaseFile(ctx, false)
	require.NoError(t, err)
	require.NoError(t, f.c.Close())

	assert.Equal(t, []State{NeedsFile, Ready, Uninitialized}, seen)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "needs_file", NeedsFile.String())
	assert.Equal(t, "ready", Ready.String())
}
