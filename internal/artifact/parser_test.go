package artifact

import (
	"bytes"
	"errors"
	"testing"

	"github.com/packsync/packsync/internal/model"
)

const sampleProfile = "Settings\tsector\tUK\\Data\\Sector\\UK_2024_06.sct\r\n" +
	"LastSession\trealname\t1234567\r\n" +
	"Plugins\tPlugin1\tC:\\Plugins\\vSMR.dll\r\n" +
	"\r\n" +
	"TeamSpeakVccs\tTs3NickName\t1234567\r\n"

const sampleSettings = "m_Column:ASSR:5:1:60:9000\n" +
	"m_Column:EOBT:5:1:1:120\n" +
	"m_ShowTsVccsMiniControl:1\n" +
	"END\n"

const sampleSector = "[INFO]\n" +
	"UK_2024_06\n" +
	"\n" +
	"[VOR]\n" +
	"; en-route navaids\n" +
	"BNN 113.750 N051.43.33.000 W000.32.59.000\n" +
	"LON 113.600 N051.29.13.000 W000.28.00.000\n" +
	"[AIRPORT]\n" +
	"EGLL 118.500 N051.28.39.000 W000.27.41.000 B\n"

func TestParseProfile(t *testing.T) {
	doc, err := Parse(model.Profile, []byte(sampleProfile))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if !doc.CRLF {
		t.Error("CRLF should be detected")
	}
	if !doc.FinalNewline {
		t.Error("final newline should be detected")
	}

	id := model.RecordID{Tag: "Settings", Key: "sector"}
	if doc.Find(id) < 0 {
		t.Fatalf("missing record %v", id)
	}

	val, ok := ProfileValue(doc.Records[doc.Find(id)])
	if !ok || val != `UK\Data\Sector\UK_2024_06.sct` {
		t.Errorf("ProfileValue = %q, %v", val, ok)
	}

	if got := len(doc.Keyed()); got != 4 {
		t.Errorf("keyed records = %d, want 4", got)
	}
}

func TestParseSettings(t *testing.T) {
	doc, err := Parse(model.Settings, []byte(sampleSettings))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if doc.Find(model.RecordID{Tag: "m_Column", Key: "ASSR"}) < 0 {
		t.Error("missing m_Column/ASSR record")
	}
	// Two-field lines are keyed by their name alone.
	if doc.Find(model.RecordID{Tag: "m_ShowTsVccsMiniControl", Key: "m_ShowTsVccsMiniControl"}) < 0 {
		t.Error("missing two-field record")
	}
	// END is raw, not keyed.
	if got := len(doc.Keyed()); got != 3 {
		t.Errorf("keyed records = %d, want 3", got)
	}
}

func TestParseSector(t *testing.T) {
	doc, err := Parse(model.Sector, []byte(sampleSector))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if doc.Find(model.RecordID{Tag: "VOR", Key: "BNN"}) < 0 {
		t.Error("missing VOR/BNN record")
	}
	if doc.Find(model.RecordID{Tag: "AIRPORT", Key: "EGLL"}) < 0 {
		t.Error("missing AIRPORT/EGLL record")
	}
	// Same key under different sections is legal.
	if doc.Find(model.RecordID{Tag: "INFO", Key: "UK_2024_06"}) < 0 {
		t.Error("missing INFO record")
	}
}

func TestParseSectorContinuationLines(t *testing.T) {
	content := "[ARTCC]\n" +
		"London_AC N051.08.00 W000.37.00\n" +
		" N051.05.00 W001.08.00\n" +
		"\tN050.57.00 W001.21.00\n"

	doc, err := Parse(model.Sector, []byte(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	i := doc.Find(model.RecordID{Tag: "ARTCC", Key: "London_AC"})
	if i < 0 {
		t.Fatal("missing ARTCC record")
	}
	if got := len(doc.Records[i].Lines); got != 3 {
		t.Errorf("record lines = %d, want 3 (with continuations)", got)
	}
}

func TestParseDuplicateIsMalformed(t *testing.T) {
	content := "LastSession\trealname\tA\nLastSession\trealname\tB\n"

	_, err := Parse(model.Profile, []byte(content))
	if err == nil {
		t.Fatal("expected error for duplicate record")
	}

	var merr *MalformedError
	if !errors.As(err, &merr) {
		t.Fatalf("error = %T, want *MalformedError", err)
	}
	if merr.ID != (model.RecordID{Tag: "LastSession", Key: "realname"}) {
		t.Errorf("malformed ID = %v", merr.ID)
	}
	if merr.Line != 2 {
		t.Errorf("malformed line = %d, want 2", merr.Line)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		kind    model.ArtifactKind
		content string
	}{
		{"profile crlf", model.Profile, sampleProfile},
		{"settings", model.Settings, sampleSettings},
		{"sector", model.Sector, sampleSector},
		{"no trailing newline", model.Settings, "m_Column:ASSR:5:1\nEND"},
		{"empty", model.Settings, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.kind, []byte(tt.content))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			out := Serialize(doc)
			if !bytes.Equal(out, []byte(tt.content)) {
				t.Fatalf("Serialize(Parse(x)) != x\ngot:  %q\nwant: %q", out, tt.content)
			}

			// Re-parsing yields an equal record sequence.
			doc2, err := Parse(tt.kind, out)
			if err != nil {
				t.Fatalf("re-Parse: %v", err)
			}
			if len(doc2.Records) != len(doc.Records) {
				t.Fatalf("re-parse records = %d, want %d", len(doc2.Records), len(doc.Records))
			}
			for i := range doc.Records {
				if doc.Records[i].Tag != doc2.Records[i].Tag ||
					doc.Records[i].Key != doc2.Records[i].Key ||
					!doc.Records[i].ContentEqual(doc2.Records[i]) {
					t.Errorf("record %d differs after round trip", i)
				}
			}
		})
	}
}

func TestEncodingFallback(t *testing.T) {
	// 0xE9 is é in Windows-1252 but invalid UTF-8.
	content := []byte("LastSession\trealname\tRen\xe9\n")

	doc, err := Parse(model.Profile, content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	i := doc.Find(model.RecordID{Tag: "LastSession", Key: "realname"})
	if i < 0 {
		t.Fatal("missing record after fallback decode")
	}
	val, _ := ProfileValue(doc.Records[i])
	if val != "René" {
		t.Errorf("value = %q, want René", val)
	}
}

func TestSerializeAfterAppendWithoutTrailingNewline(t *testing.T) {
	doc, err := Parse(model.Settings, []byte("m_Column:ASSR:5:1\nEND"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.FinalNewline {
		t.Fatal("source has no trailing newline")
	}

	rec, _ := SettingsRecord("m_Column:VFPC:5:0:1")
	doc.Append(rec)

	out := string(Serialize(doc))
	if !bytes.HasSuffix([]byte(out), []byte("\n")) {
		t.Error("appending must introduce a trailing newline")
	}
	if out != "m_Column:ASSR:5:1\nm_Column:VFPC:5:0:1\nEND\n" {
		t.Errorf("serialized = %q", out)
	}
}

func TestSettingsRecord(t *testing.T) {
	if _, ok := SettingsRecord("END"); ok {
		t.Error("END should not form a keyed record")
	}
	rec, ok := SettingsRecord("SECTORFILE:C:\\pack\\UK.sct")
	if !ok || rec.Tag != "SECTORFILE" || rec.Key != "SECTORFILE" {
		t.Errorf("SettingsRecord = %+v, %v", rec, ok)
	}
}

func TestSettingsIdentity(t *testing.T) {
	tests := []struct {
		line    string
		tag     string
		key     string
		keyedOK bool
	}{
		{"m_Column:ASSR:5:1:60", "m_Column", "ASSR", true},
		{"m_ShowTsVccsMiniControl:1", "m_ShowTsVccsMiniControl", "m_ShowTsVccsMiniControl", true},
		{"SECTORFILE:C:\\pack\\UK.sct", "SECTORFILE", "SECTORFILE", true},
		{"PLUGIN:vSMR:GndTrailsDots:5", "PLUGIN", "vSMR:GndTrailsDots", true},
		{"END", "", "", false},
		{"", "", "", false},
		{"; comment", "", "", false},
	}

	for _, tt := range tests {
		tag, key, ok := settingsIdentity(tt.line)
		if tag != tt.tag || key != tt.key || ok != tt.keyedOK {
			t.Errorf("settingsIdentity(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.line, tag, key, ok, tt.tag, tt.key, tt.keyedOK)
		}
	}
}
