package cli

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/darshit3596/shreejida/internal/appstate"
	"github.com/darshit3596/shreejida/internal/auth"
	"github.com/darshit3596/shreejida/internal/model"
)

// errQuit ends the shell loop.
var errQuit = errors.New("quit")

// access is what a shell command needs before it may run.
type access int

const (
	anyone    access = iota // no database needed
	needsFile               // a database must be loaded
	needsUser               // a database must be loaded and a user logged in
)

type shellCommand struct {
	name  string
	args  string
	help  string
	needs access
	run   func(s *shell, arg string) error
}

// shell is one interactive session. Results go to out; questions go through
// the prompter.
type shell struct {
	e   *env
	out io.Writer
}

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Work with the database interactively",
		Long: `Start an interactive session on the current database file.

Changes are kept in memory until you run 'save'. Log in first; on a file
with no users yet, the first login creates the account. Type 'help' for
the list of commands.

Examples:
  shreejida shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer e.close()
			s := &shell{e: e, out: cmd.OutOrStdout()}
			return s.loop()
		},
	}
}

var shellCommands []shellCommand

func init() {
	shellCommands = []shellCommand{
		{"help", "", "list commands", anyone, (*shell).help},
		{"status", "", "show the database file and a summary", anyone, (*shell).status},
		{"new", "[path]", "create a new database file", anyone, (*shell).newFile},
		{"open", "[path]", "open another database file", anyone, (*shell).openFile},
		{"login", "", "log in (creates the first user on an empty file)", needsFile, (*shell).login},
		{"logout", "", "log out", needsUser, (*shell).logout},
		{"invoices", "[search]", "list invoices, newest first", needsUser, (*shell).invoices},
		{"unpaid", "", "list unpaid invoices", needsUser, (*shell).unpaid},
		{"invoice", "<id>", "show an invoice", needsUser, (*shell).invoice},
		{"new-invoice", "", "issue a new invoice", needsUser, (*shell).newInvoice},
		{"pay", "<id>", "mark an invoice paid", needsUser, setStatus(model.StatusPaid)},
		{"unpay", "<id>", "mark an invoice unpaid", needsUser, setStatus(model.StatusUnpaid)},
		{"delete-invoice", "<id>", "delete an invoice", needsUser, (*shell).deleteInvoice},
		{"inventory", "", "list inventory items", needsUser, (*shell).inventory},
		{"low-stock", "", "list items at or below their minimum stock", needsUser, (*shell).lowStock},
		{"add-item", "", "add an inventory item", needsUser, (*shell).addItem},
		{"edit-item", "<name>", "change an inventory item", needsUser, (*shell).editItem},
		{"delete-item", "<name>", "delete an inventory item", needsUser, (*shell).deleteItem},
		{"report", "[daily|monthly|yearly]", "summarize sales", needsUser, (*shell).report},
		{"settings", "", "show shop settings", needsUser, (*shell).settings},
		{"edit-settings", "", "change shop settings", needsUser, (*shell).editSettings},
		{"passwd", "", "change your password", needsUser, (*shell).passwd},
		{"save", "", "write changes to the database file", needsFile, (*shell).save},
		{"save-as", "[path]", "write a copy to another file", needsFile, (*shell).saveAs},
		{"quit", "", "leave the shell", anyone, (*shell).quit},
	}
}

func lookupShellCommand(name string) (shellCommand, bool) {
	if name == "exit" {
		name = "quit"
	}
	for _, c := range shellCommands {
		if c.name == name {
			return c, true
		}
	}
	return shellCommand{}, false
}

func (s *shell) loop() error {
	fmt.Fprintln(s.out, "Type 'help' for commands.")
	if !s.e.session.Ready() {
		fmt.Fprintln(s.out, "No database file selected. Use 'new' or 'open'.")
	}
	for {
		fmt.Fprint(s.e.prompter.out, s.promptLabel()+"> ")
		line, err := s.e.prompter.readLine()
		if errors.Is(err, io.EOF) {
			return s.leave()
		}
		if err != nil {
			return WrapExitError(ExitFailure, "failed to read command", err)
		}
		if line == "" {
			continue
		}
		err = s.dispatch(line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return s.leave()
		}
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *shell) promptLabel() string {
	if u, ok := s.e.session.Auth.Current(); ok {
		return "shreejida (" + u.Username + ")"
	}
	return "shreejida"
}

func (s *shell) dispatch(line string) error {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	c, ok := lookupShellCommand(strings.ToLower(name))
	if !ok {
		return fmt.Errorf("unknown command %q (type 'help')", name)
	}
	if c.needs >= needsFile && !s.e.session.Ready() {
		return fmt.Errorf("no database file selected (use 'new' or 'open')")
	}
	if c.needs >= needsUser {
		if _, ok := s.e.session.Auth.Current(); !ok {
			return fmt.Errorf("%s: log in first", c.name)
		}
	}
	if strings.HasPrefix(c.args, "<") && arg == "" {
		return fmt.Errorf("usage: %s %s", c.name, c.args)
	}
	return c.run(s, arg)
}

// leave ends the shell at end of input. Unsaved changes are lost, so say so.
func (s *shell) leave() error {
	if s.e.session.HasUnsavedChanges() {
		fmt.Fprintln(s.out, "Input ended; unsaved changes were discarded.")
	}
	return nil
}

func (s *shell) help(string) error {
	for _, c := range shellCommands {
		usage := strings.TrimSpace(c.name + " " + c.args)
		fmt.Fprintf(s.out, "  %-32s %s\n", usage, c.help)
	}
	return nil
}

func (s *shell) status(string) error {
	writeStatus(s.out, s.e.status())
	return nil
}

// discardOK asks before an action that would drop unsaved changes.
func (s *shell) discardOK() (bool, error) {
	if !s.e.session.HasUnsavedChanges() {
		return true, nil
	}
	return s.e.prompter.Confirm("There are unsaved changes. Discard them")
}

// replaceOK asks before the open database stops being the working file,
// whether or not it has unsaved changes.
func (s *shell) replaceOK(action string) (bool, error) {
	if !s.e.session.Ready() {
		return true, nil
	}
	question := fmt.Sprintf("Close %s and %s", s.e.session.Controller.FileName(), action)
	if s.e.session.HasUnsavedChanges() {
		question = "There are unsaved changes. " + question
	}
	return s.e.prompter.Confirm(question)
}

func (s *shell) newFile(arg string) error {
	ok, err := s.replaceOK("start a new database")
	if err != nil || !ok {
		return err
	}
	if arg != "" {
		s.e.prompter.Preset(arg)
	}
	ok, err = s.e.session.NewFile(s.e.ctx, true)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	fmt.Fprintf(s.out, "Created %s. Log in to create the first user.\n", s.e.session.Controller.FileName())
	return nil
}

func (s *shell) openFile(arg string) error {
	ok, err := s.replaceOK("open another database")
	if err != nil || !ok {
		return err
	}
	if arg != "" {
		s.e.prompter.Preset(arg)
	}
	ok, err = s.e.session.OpenFile(s.e.ctx, true)
	if err != nil {
		return err
	}
	if !ok {
		if s.e.session.Ready() {
			fmt.Fprintln(s.out, "Cancelled.")
		} else {
			fmt.Fprintln(s.out, "Could not open that file. Use 'new' or 'open'.")
		}
		return nil
	}
	fmt.Fprintf(s.out, "Opened %s. Log in to continue.\n", s.e.session.Controller.FileName())
	return nil
}

func (s *shell) login(string) error {
	if u, ok := s.e.session.Auth.Current(); ok {
		return fmt.Errorf("already logged in as %s", u.Username)
	}
	username, err := s.e.prompter.AskRequired("Username")
	if err != nil {
		return err
	}
	password, err := s.e.prompter.AskPassword("Password")
	if err != nil {
		return err
	}
	first := len(s.e.session.State.Users()) == 0
	u, err := s.e.session.Auth.Login(s.e.ctx, username, password)
	if err != nil {
		return err
	}
	if first {
		fmt.Fprintf(s.out, "Created user %s.\n", u.Username)
	}
	fmt.Fprintf(s.out, "Logged in as %s.\n", u.Username)
	return nil
}

func (s *shell) logout(string) error {
	s.e.session.Auth.Logout()
	fmt.Fprintln(s.out, "Logged out.")
	return nil
}

func (s *shell) invoices(arg string) error {
	writeInvoiceTable(s.out, s.e.session.State.SearchInvoices(arg))
	return nil
}

func (s *shell) unpaid(string) error {
	st := s.e.session.State
	writeInvoiceTable(s.out, st.UnpaidInvoices())
	fmt.Fprintf(s.out, "Total due: %s\n", Money(st.UnpaidTotal()))
	return nil
}

func (s *shell) invoice(id string) error {
	inv, ok := s.e.session.State.InvoiceByID(strings.ToUpper(id))
	if !ok {
		return fmt.Errorf("invoice %s not found", id)
	}
	writeInvoice(s.out, inv, s.e.session.State.Settings())
	return nil
}

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

func (s *shell) newInvoice(string) error {
	p := s.e.prompter
	st := s.e.session.State
	fmt.Fprintf(s.out, "New invoice %s\n", st.NextInvoiceNumber())

	var d model.InvoiceDraft
	var err error
	if d.CustomerName, err = p.AskRequired("Customer name"); err != nil {
		return err
	}
	if d.Vehicle, err = p.Ask("Vehicle"); err != nil {
		return err
	}
	if d.VehicleNo, err = p.Ask("Vehicle no"); err != nil {
		return err
	}
	for {
		if d.MobileNo, err = p.Ask("Mobile no"); err != nil {
			return err
		}
		if d.MobileNo == "" || mobilePattern.MatchString(d.MobileNo) {
			break
		}
		fmt.Fprintln(s.out, "Mobile number must be 10 digits.")
	}
	if d.KM, err = p.Ask("KM"); err != nil {
		return err
	}
	if d.Date, err = s.askDate("Date", s.e.clock.Now().Format(appstate.DateLayout)); err != nil {
		return err
	}
	if d.Lines, err = s.askLines(); err != nil {
		return err
	}
	if len(d.Lines) == 0 {
		fmt.Fprintln(s.out, "No items; invoice discarded.")
		return nil
	}
	if d.TaxPercent, err = p.AskFloat("Tax %", 0); err != nil {
		return err
	}
	if d.DiscountAmount, err = p.AskFloat("Discount", 0); err != nil {
		return err
	}
	if d.Status, err = s.askStatus(); err != nil {
		return err
	}

	inv, err := st.AddInvoice(s.e.ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Issued %s for %s, total %s.\n", inv.ID, inv.CustomerName, Money(inv.Total))
	return nil
}

func (s *shell) askDate(label, def string) (string, error) {
	for {
		v, err := s.e.prompter.AskDefault(label+" (YYYY-MM-DD)", def)
		if err != nil {
			return "", err
		}
		if _, err := time.Parse(appstate.DateLayout, v); err == nil {
			return v, nil
		}
		fmt.Fprintf(s.out, "%q is not a date like 2025-01-31\n", v)
	}
}

// askLines reads invoice lines until an empty description. A description
// naming an inventory item offers its price as the rate.
func (s *shell) askLines() ([]model.InvoiceLine, error) {
	p := s.e.prompter
	var lines []model.InvoiceLine
	for n := 1; ; n++ {
		desc, err := p.Ask(fmt.Sprintf("Item %d description (empty to finish)", n))
		if err != nil {
			return nil, err
		}
		if desc == "" {
			return lines, nil
		}
		var rate float64
		if item, ok := s.e.session.State.InventoryByName(desc); ok {
			rate = item.Price
			fmt.Fprintf(s.out, "  in stock: %s\n", Quantity(item.Quantity))
		}
		qty, err := p.AskFloat("  Quantity", 1)
		if err != nil {
			return nil, err
		}
		if rate, err = p.AskFloat("  Rate", rate); err != nil {
			return nil, err
		}
		l := model.InvoiceLine{Description: desc, Quantity: qty, Rate: rate}
		fmt.Fprintf(s.out, "  amount: %s\n", Money(l.Item().Amount))
		lines = append(lines, l)
	}
}

func (s *shell) askStatus() (model.InvoiceStatus, error) {
	for {
		v, err := s.e.prompter.AskDefault("Status (Paid/Unpaid)", string(model.StatusPaid))
		if err != nil {
			return "", err
		}
		status, err := model.ParseInvoiceStatus(v)
		if err == nil {
			return status, nil
		}
		fmt.Fprintln(s.out, err)
	}
}

func setStatus(status model.InvoiceStatus) func(*shell, string) error {
	return func(s *shell, id string) error {
		id = strings.ToUpper(id)
		if err := s.e.session.State.UpdateInvoiceStatus(s.e.ctx, id, status); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s marked %s.\n", id, status)
		return nil
	}
}

func (s *shell) deleteInvoice(id string) error {
	id = strings.ToUpper(id)
	if _, ok := s.e.session.State.InvoiceByID(id); !ok {
		return fmt.Errorf("invoice %s not found", id)
	}
	typed, err := s.e.prompter.Ask(fmt.Sprintf("Type %s to delete it", id))
	if err != nil {
		return err
	}
	if strings.ToUpper(typed) != id {
		fmt.Fprintln(s.out, "Not deleted.")
		return nil
	}
	if err := s.e.session.State.DeleteInvoice(s.e.ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Deleted %s.\n", id)
	return nil
}

func (s *shell) inventory(string) error {
	writeInventoryTable(s.out, s.e.session.State.Inventory())
	return nil
}

func (s *shell) lowStock(string) error {
	writeInventoryTable(s.out, s.e.session.State.LowStock())
	return nil
}

// askItem fills item from the user, offering its current values.
func (s *shell) askItem(item *model.InventoryItem) error {
	p := s.e.prompter
	var err error
	if item.Name == "" {
		if item.Name, err = p.AskRequired("Name"); err != nil {
			return err
		}
	} else if item.Name, err = p.AskDefault("Name", item.Name); err != nil {
		return err
	}
	if item.Quantity, err = p.AskInt("Quantity (-1 for unlimited)", item.Quantity, model.Infinite); err != nil {
		return err
	}
	if item.Price, err = p.AskFloat("Price", item.Price); err != nil {
		return err
	}
	item.MinStock, err = p.AskInt("Minimum stock", item.MinStock, 0)
	return err
}

func (s *shell) addItem(string) error {
	var item model.InventoryItem
	if err := s.askItem(&item); err != nil {
		return err
	}
	added, err := s.e.session.State.AddInventoryItem(s.e.ctx, item)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added %s.\n", added.Name)
	return nil
}

func (s *shell) editItem(name string) error {
	item, ok := s.e.session.State.InventoryByName(name)
	if !ok {
		return fmt.Errorf("no inventory item named %q", name)
	}
	if err := s.askItem(&item); err != nil {
		return err
	}
	if err := s.e.session.State.UpdateInventoryItem(s.e.ctx, item); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Updated %s.\n", item.Name)
	return nil
}

func (s *shell) deleteItem(name string) error {
	item, ok := s.e.session.State.InventoryByName(name)
	if !ok {
		return fmt.Errorf("no inventory item named %q", name)
	}
	ok, err := s.e.prompter.Confirm(fmt.Sprintf("Delete %s", item.Name))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(s.out, "Not deleted.")
		return nil
	}
	if err := s.e.session.State.DeleteInventoryItem(s.e.ctx, item.ID); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Deleted %s.\n", item.Name)
	return nil
}

func (s *shell) report(arg string) error {
	if arg == "" {
		arg = string(appstate.PeriodDaily)
	}
	p, err := appstate.ParsePeriod(arg)
	if err != nil {
		return err
	}
	from, to := p.Range(s.e.clock.Now())
	writeReport(s.out, s.e.session.State.Report(from, to))
	return nil
}

func (s *shell) settings(string) error {
	writeSettings(s.out, s.e.session.State.Settings())
	return nil
}

// editSettings asks for the password again before changing anything.
func (s *shell) editSettings(string) error {
	pw, err := s.e.prompter.AskPassword("Current password")
	if err != nil {
		return err
	}
	if !s.e.session.Auth.VerifyPassword(pw) {
		return auth.ErrInvalidCredentials
	}

	settings := s.e.session.State.Settings()
	fields := []struct {
		key   string
		label string
	}{
		{model.KeyShopName, "Shop name"},
		{model.KeyTagLine, "Tag line"},
		{model.KeyAddress, "Address"},
		{model.KeySignatory, "Signatory"},
		{model.KeyTerm1, "Term 1"},
		{model.KeyTerm2, "Term 2"},
		{model.KeyTerm3, "Term 3"},
	}
	for _, f := range fields {
		field := settings.Field(f.key)
		v, err := s.e.prompter.AskDefault(f.label, *field)
		if err != nil {
			return err
		}
		*field = v
	}
	if err := s.e.session.State.UpdateSettings(s.e.ctx, settings); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Settings updated.")
	return nil
}

func (s *shell) passwd(string) error {
	p := s.e.prompter
	old, err := p.AskPassword("Current password")
	if err != nil {
		return err
	}
	next, err := p.AskPassword("New password")
	if err != nil {
		return err
	}
	again, err := p.AskPassword("Repeat new password")
	if err != nil {
		return err
	}
	if next == "" {
		return fmt.Errorf("password must not be empty")
	}
	if next != again {
		return fmt.Errorf("passwords do not match")
	}
	if err := s.e.session.Auth.ChangePassword(s.e.ctx, old, next); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Password changed.")
	return nil
}

func (s *shell) save(string) error {
	if err := s.e.session.Save(s.e.ctx); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Saved %s.\n", s.e.session.Controller.FileName())
	return nil
}

func (s *shell) saveAs(arg string) error {
	if arg != "" {
		s.e.prompter.Preset(arg)
	}
	ok, err := s.e.session.SaveAs(s.e.ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	fmt.Fprintln(s.out, "Copy saved.")
	return nil
}

func (s *shell) quit(string) error {
	ok, err := s.discardOK()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return errQuit
}
