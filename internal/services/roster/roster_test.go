package roster

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

func TestSniffColumns(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		want    Columns
		wantErr bool
	}{
		{name: "plain", header: []string{"LOC_ID", "SITE_NAME"}, want: Columns{ID: 0, Name: 1}},
		{name: "spaces and case", header: []string{"nama lokasi", "loc id"}, want: Columns{ID: 1, Name: 0}},
		{name: "kecamatan", header: []string{"No", "Kecamatan", "Location"}, want: Columns{ID: 2, Name: 1}},
		{name: "fallback second column", header: []string{"LOCID", "Alamat"}, want: Columns{ID: 0, Name: 1}},
		{name: "fallback first column", header: []string{"Alamat", "LOCID"}, want: Columns{ID: 1, Name: 0}},
		{name: "no id", header: []string{"Gedung", "Alamat"}, wantErr: true},
		{name: "single column", header: []string{"LOC"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SniffColumns(tt.header)
			if tt.wantErr {
				if !errors.Is(err, ErrNoColumns) {
					t.Fatalf("SniffColumns() error = %v, want ErrNoColumns", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SniffColumns() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("SniffColumns() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		roster  *models.Roster
		wantErr string
	}{
		{name: "ok", roster: &models.Roster{Project: "P", Locations: []models.Location{{ID: "1", DisplayName: "A"}}}},
		{name: "nil", roster: nil, wantErr: "nil roster"},
		{name: "no project", roster: &models.Roster{Locations: []models.Location{{ID: "1", DisplayName: "A"}}}, wantErr: "Project is empty"},
		{name: "no locations", roster: &models.Roster{Project: "P"}, wantErr: "no locations"},
		{name: "duplicate", roster: &models.Roster{Project: "P", Locations: []models.Location{{ID: "1", DisplayName: "A"}, {ID: "1", DisplayName: "B"}}}, wantErr: "duplicate"},
		{name: "blank name", roster: &models.Roster{Project: "P", Locations: []models.Location{{ID: "1"}}}, wantErr: "DisplayName is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.roster)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() failed: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidRoster) {
				t.Fatalf("Validate() error = %v, want ErrInvalidRoster", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestReadCSV(t *testing.T) {
	data := "No,Nama Gedung,LOC ID\n1, SMA 1 ,1001\n,,\n2,SMA 2,1002\n"
	r, err := ReadCSV("Pendidikan", strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV() failed: %v", err)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if r.Locations[0] != (models.Location{ID: "1001", DisplayName: "SMA 1"}) {
		t.Errorf("first location = %+v", r.Locations[0])
	}
}

func TestReadCSV_DuplicateRejected(t *testing.T) {
	data := "LOC_ID,SITE_NAME\n1,A\n1,B\n"
	if _, err := ReadCSV("P", strings.NewReader(data)); !errors.Is(err, ErrInvalidRoster) {
		t.Errorf("ReadCSV() error = %v, want ErrInvalidRoster", err)
	}
}

func TestReadFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"LOC_ID", "SITE_NAME"},
		{"15557001", "Kec. Ungaran"},
		{"15557002", "Kec. Bawen"},
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName() failed: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("SetSheetRow() failed: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() failed: %v", err)
	}
	_ = f.Close()

	r, err := ReadFile("Kecamatan Berdaya", path)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if r.Len() != 2 || r.Locations[1].DisplayName != "Kec. Bawen" {
		t.Errorf("roster = %+v", r.Locations)
	}
	if r.Project != "Kecamatan Berdaya" {
		t.Errorf("Project = %q", r.Project)
	}
}

func TestReadFile_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.txt")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile("P", path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ReadFile() error = %v, want ErrUnsupportedFormat", err)
	}
}
