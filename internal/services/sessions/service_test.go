package sessions

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/browserutils/kooky"

	"github.com/j-veylop/venue-usage-tui/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestNew_CreatesFile(t *testing.T) {
	svc := newTestService(t)
	if _, err := os.Stat(svc.Path()); err != nil {
		t.Fatalf("sessions file not created: %v", err)
	}
	if svc.Count() != 0 {
		t.Errorf("Count() = %d, want 0", svc.Count())
	}
}

func TestSetGetDelete(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Set("Pendidikan", " abc123 ", models.SourceManual); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	cred, err := svc.Credential("Pendidikan")
	if err != nil || cred != "abc123" {
		t.Errorf("Credential() = %q, %v", cred, err)
	}

	if _, err := svc.Credential("Lainnya"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Credential() error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete("Pendidikan"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := svc.Delete("Pendidikan"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSet_RequiresValues(t *testing.T) {
	svc := newTestService(t)
	if err := svc.Set("", "x", models.SourceManual); err == nil {
		t.Error("Set() should reject an empty project")
	}
	if err := svc.Set("P", "  ", models.SourceManual); err == nil {
		t.Error("Set() should reject an empty credential")
	}
}

func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	_ = svc.Set("B", "two", models.SourceManual)
	_ = svc.Set("A", "one", models.SourceBrowser)
	_ = svc.Close()

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer reopened.Close()

	list := reopened.List()
	if len(list) != 2 || list[0].Project != "A" || list[0].Source != models.SourceBrowser {
		t.Errorf("List() = %+v", list)
	}
}

func TestLegacyMapFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte(`{"Pendidikan":"legacy"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	svc, err := New(path)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer svc.Close()

	if cred, _ := svc.Credential("Pendidikan"); cred != "legacy" {
		t.Errorf("Credential() = %q, want legacy", cred)
	}
}

func TestInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte(`not json`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(path); err == nil {
		t.Error("New() should fail on an unparseable file")
	}
}

func TestWatcher_PicksUpExternalWrite(t *testing.T) {
	svc := newTestService(t)

	// Drain the load event.
	<-svc.Events()

	data := []byte(`{"version":1,"sessions":[{"project":"WMS","credential":"ext"}]}`)
	if err := os.WriteFile(svc.Path(), data, 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == EventSessionsChanged {
				if cred, _ := svc.Credential("WMS"); cred != "ext" {
					t.Errorf("Credential() = %q after reload", cred)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for EventSessionsChanged")
		}
	}
}

func TestMasked(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"abc", "***"},
		{"abcdefgh", "abcd****"},
	}
	for _, tt := range tests {
		if got := (models.Session{Credential: tt.in}).Masked(); got != tt.want {
			t.Errorf("Masked(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func cookie(value string, expires time.Time) *kooky.Cookie {
	return &kooky.Cookie{Cookie: http.Cookie{Name: CookieName, Value: value, Expires: expires}}
}

func TestPickCredential(t *testing.T) {
	now := time.Now()
	got, err := PickCredential([]*kooky.Cookie{
		cookie("old", now.Add(time.Hour)),
		nil,
		cookie("", now.Add(3*time.Hour)),
		cookie("new", now.Add(2*time.Hour)),
	})
	if err != nil || got != "new" {
		t.Errorf("PickCredential() = %q, %v", got, err)
	}

	if _, err := PickCredential(nil); !errors.Is(err, ErrNoBrowserSession) {
		t.Errorf("PickCredential(nil) error = %v", err)
	}
}

func TestImportFromBrowser(t *testing.T) {
	svc := newTestService(t)

	source := func(context.Context) ([]*kooky.Cookie, error) {
		return []*kooky.Cookie{cookie("fromchrome", time.Now().Add(time.Hour))}, errors.New("firefox locked")
	}
	sess, err := svc.ImportFromBrowser(context.Background(), "Pelayanan Publik", source)
	if err != nil {
		t.Fatalf("ImportFromBrowser() failed: %v", err)
	}
	if sess.Credential != "fromchrome" || sess.Source != models.SourceBrowser {
		t.Errorf("session = %+v", sess)
	}

	empty := func(context.Context) ([]*kooky.Cookie, error) { return nil, nil }
	if _, err := svc.ImportFromBrowser(context.Background(), "X", empty); !errors.Is(err, ErrNoBrowserSession) {
		t.Errorf("ImportFromBrowser() error = %v, want ErrNoBrowserSession", err)
	}
}
