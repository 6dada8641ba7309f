package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/packsync/packsync/internal/artifact"
	"github.com/packsync/packsync/internal/model"
)

const samplePrf = "TopSky plugin\tScreenLayout\t1\r\n" +
	"LastSession\trealname\tJane Doe\r\n" +
	"LastSession\tcertificate\t1234567\r\n" +
	"LastSession\tpassword\thunter2\r\n" +
	"LastSession\trating\t4\r\n" +
	"Plugins\tPlugin0\tC:\\EuroScope\\UKControllerPluginCore.dll\r\n" +
	"TeamSpeakVccs\tTs3G2APtt\t123456\r\n"

func writePrf(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHarvest(t *testing.T) {
	dir := t.TempDir()
	writePrf(t, dir, "iTEC.prf", samplePrf)
	writePrf(t, dir, filepath.Join("sub", "Area.prf"),
		"LastSession\trealname\tJane Doe\r\nLastSession\tcertificate\t7654321\r\n")
	writePrf(t, dir, "notes.txt", "LastSession\trealname\tNot A Profile\n")

	found, err := Harvest(dir)
	if err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}

	if got := found[FieldRealname]; len(got) != 1 || got[0] != "Jane Doe" {
		t.Errorf("realname = %v", got)
	}
	if got := found[FieldCertificate]; len(got) != 2 {
		t.Errorf("certificate = %v, want two distinct values", got)
	}
	if got := found[FieldPassword]; len(got) != 1 || got[0] != "hunter2" {
		t.Errorf("password = %v", got)
	}
	if got := found[FieldPlugins]; len(got) != 1 || got[0] != `C:\EuroScope\UKControllerPluginCore.dll` {
		t.Errorf("plugins = %v", got)
	}
	if got := found[FieldVccsPttG2A]; len(got) != 1 || got[0] != "123456" {
		t.Errorf("vccs ptt = %v", got)
	}
}

func TestHarvestIgnoresInvalidValues(t *testing.T) {
	dir := t.TempDir()
	writePrf(t, dir, "bad.prf",
		"LastSession\tcertificate\tabc\r\nLastSession\trating\t44\r\n")

	found, err := Harvest(dir)
	if err != nil {
		t.Fatalf("Harvest failed: %v", err)
	}
	if got := found[FieldCertificate]; len(got) != 0 {
		t.Errorf("certificate = %v, want none", got)
	}
}

// fakePrompter scripts prompter answers for tests.
type fakePrompter struct {
	selected string
	secret   string
	confirm  map[string]bool
	selects  int
	secrets  int
}

func (f *fakePrompter) Select(field Field, options []string) (string, error) {
	f.selects++
	return f.selected, nil
}

func (f *fakePrompter) Secret(prompt string) (string, error) {
	f.secrets++
	return f.secret, nil
}

func (f *fakePrompter) Confirm(prompt string) (bool, error) {
	for sub, answer := range f.confirm {
		if sub != "" && strings.Contains(prompt, sub) {
			return answer, nil
		}
	}
	return true, nil
}

func TestResolveSingleValues(t *testing.T) {
	found := Found{
		FieldRealname:    {"Jane Doe"},
		FieldCertificate: {"1234567"},
		FieldPassword:    {"hunter2"},
	}

	p := &fakePrompter{}
	s, err := Resolve(found, p)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if s.Realname != "Jane Doe" || s.Certificate != "1234567" || s.Password != "hunter2" {
		t.Errorf("Settings = %+v", s)
	}
	if p.selects != 0 || p.secrets != 0 {
		t.Errorf("prompter used for unambiguous fields: %+v", p)
	}
}

func TestResolveConflicts(t *testing.T) {
	found := Found{
		FieldCertificate: {"1234567", "7654321"},
		FieldPassword:    {"a", "b"},
	}

	p := &fakePrompter{selected: "7654321", secret: "newpass"}
	s, err := Resolve(found, p)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if s.Certificate != "7654321" {
		t.Errorf("Certificate = %q", s.Certificate)
	}
	if s.Password != "newpass" {
		t.Errorf("Password = %q", s.Password)
	}
	if p.secrets != 1 {
		t.Errorf("Secret called %d times, want 1", p.secrets)
	}
}

func TestResolvePluginConfirmation(t *testing.T) {
	found := Found{
		FieldPlugins: {`C:\A\keep.dll`, `C:\B\skip.dll`},
	}

	p := &fakePrompter{confirm: map[string]bool{"skip.dll": false}}
	s, err := Resolve(found, p)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(s.Plugins) != 1 || s.Plugins[0] != `C:\A\keep.dll` {
		t.Errorf("Plugins = %v", s.Plugins)
	}
}

func TestApply(t *testing.T) {
	doc, err := artifact.Parse(model.Profile, []byte(
		"LastSession\trealname\tOld Name\r\n"+
			"Plugins\tPlugin0\tC:\\existing.dll\r\n"))
	if err != nil {
		t.Fatal(err)
	}

	Apply(doc, Settings{
		Realname:    "Jane Doe",
		Certificate: "1234567",
		Plugins:     []string{`C:\extra.dll`},
	})

	text := string(artifact.Serialize(doc))

	for _, want := range []string{
		"LastSession\trealname\tJane Doe",
		"LastSession\tcertificate\t1234567",
		"Plugins\tPlugin0\tC:\\existing.dll",
		"Plugins\tPlugin1\tC:\\extra.dll",
		"TeamSpeakVccs\tTs3NickName\t1234567",
		"TeamSpeakVccs\tTsVccsMiniControlX\t1581",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Old Name") {
		t.Error("stale realname survived Apply")
	}
}

func TestApplyEmptySettingsIsNoop(t *testing.T) {
	doc, err := artifact.Parse(model.Profile, []byte("Window\ttop\t100\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	before := artifact.Serialize(doc)

	Apply(doc, Settings{})

	after := artifact.Serialize(doc)
	if string(before) != string(after) {
		t.Errorf("empty settings changed the document:\n%q\n%q", before, after)
	}
}
