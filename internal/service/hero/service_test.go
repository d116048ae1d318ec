package hero

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/service/media"
)

type memoryStore struct {
	settings *domain.HeroSettings
	saveErr  error
}

func (m *memoryStore) HeroImages(context.Context) (*domain.HeroSettings, error) {
	if m.settings == nil {
		return nil, domain.ErrNotFound
	}
	cp := *m.settings
	cp.Images = append([]domain.HeroImage{}, m.settings.Images...)
	return &cp, nil
}

func (m *memoryStore) SaveHeroImages(_ context.Context, images []domain.HeroImage) (*domain.HeroSettings, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.settings = &domain.HeroSettings{Images: append([]domain.HeroImage{}, images...)}
	return m.HeroImages(context.Background())
}

type stubMedia struct {
	uploaded []string
	deleted  []string
	failOn   string
}

func (s *stubMedia) Upload(_ context.Context, _ io.Reader, filename string, _ int64) (*media.Image, error) {
	if filename == s.failOn {
		return nil, errors.New("cdn down")
	}
	s.uploaded = append(s.uploaded, filename)
	return &media.Image{PublicID: "hero/" + filename, URL: "https://cdn.test/" + filename}, nil
}

func (s *stubMedia) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

func files(names ...string) []File {
	out := make([]File, 0, len(names))
	for _, n := range names {
		out = append(out, File{Reader: strings.NewReader("img"), Filename: n, Size: 3})
	}
	return out
}

func urls(s *domain.HeroSettings) []string {
	out := make([]string, 0, len(s.Images))
	for _, img := range s.Images {
		out = append(out, img.URL)
	}
	return out
}

func TestList_EmptyBeforeFirstSave(t *testing.T) {
	svc := New(&memoryStore{}, &stubMedia{}, nil)
	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got.Images == nil || len(got.Images) != 0 {
		t.Fatalf("expected empty carousel, got %+v", got)
	}
}

func TestAdd_AppendsInOrder(t *testing.T) {
	store := &memoryStore{settings: &domain.HeroSettings{Images: []domain.HeroImage{{URL: "https://old.test/x.jpg"}}}}
	m := &stubMedia{}
	svc := New(store, m, nil)

	got, err := svc.Add(context.Background(), files("a.jpg", "b.jpg"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	want := []string{"https://old.test/x.jpg", "https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}
	if strings.Join(urls(got), ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected carousel %v", urls(got))
	}

	if _, err := svc.Add(context.Background(), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for no files, got %v", err)
	}
}

func TestAdd_FailedUploadSavesNothing(t *testing.T) {
	store := &memoryStore{}
	m := &stubMedia{failOn: "b.jpg"}
	svc := New(store, m, nil)

	if _, err := svc.Add(context.Background(), files("a.jpg", "b.jpg")); err == nil {
		t.Fatalf("expected upload error")
	}
	if store.settings != nil {
		t.Fatalf("carousel must not be saved, got %+v", store.settings)
	}
	if len(m.deleted) != 1 || m.deleted[0] != "hero/a.jpg" {
		t.Fatalf("expected the uploaded image to be cleaned up, got %v", m.deleted)
	}
}

func TestAdd_RespectsLimit(t *testing.T) {
	images := make([]domain.HeroImage, MaxImages)
	for i := range images {
		images[i] = domain.HeroImage{URL: "https://cdn.test/x.jpg"}
	}
	svc := New(&memoryStore{settings: &domain.HeroSettings{Images: images}}, &stubMedia{}, nil)
	if _, err := svc.Add(context.Background(), files("a.jpg")); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	store := &memoryStore{settings: &domain.HeroSettings{Images: []domain.HeroImage{
		{URL: "https://cdn.test/a.jpg", PublicID: "hero/a"},
		{URL: "https://cdn.test/b.jpg", PublicID: "hero/b"},
		{URL: "https://elsewhere.test/c.jpg"},
	}}}
	m := &stubMedia{}
	svc := New(store, m, nil)
	ctx := context.Background()

	got, err := svc.Remove(ctx, 1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if strings.Join(urls(got), ",") != "https://cdn.test/a.jpg,https://elsewhere.test/c.jpg" {
		t.Fatalf("unexpected carousel %v", urls(got))
	}
	if len(m.deleted) != 1 || m.deleted[0] != "hero/b" {
		t.Fatalf("expected CDN copy deleted, got %v", m.deleted)
	}

	if _, err := svc.Remove(ctx, 1); err != nil {
		t.Fatalf("remove external image: %v", err)
	}
	if len(m.deleted) != 1 {
		t.Fatalf("external images have no CDN copy to delete, got %v", m.deleted)
	}
	if _, err := svc.Remove(ctx, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplace(t *testing.T) {
	store := &memoryStore{settings: &domain.HeroSettings{Images: []domain.HeroImage{
		{URL: "https://cdn.test/a.jpg", PublicID: "hero/a"},
		{URL: "https://cdn.test/b.jpg", PublicID: "hero/b"},
	}}}
	m := &stubMedia{}
	svc := New(store, m, nil)
	ctx := context.Background()

	got, err := svc.Replace(ctx, []domain.HeroImage{
		{URL: " https://cdn.test/b.jpg ", PublicID: "hero/b"},
		{URL: "https://elsewhere.test/c.jpg"},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if strings.Join(urls(got), ",") != "https://cdn.test/b.jpg,https://elsewhere.test/c.jpg" {
		t.Fatalf("unexpected carousel %v", urls(got))
	}
	if len(m.deleted) != 1 || m.deleted[0] != "hero/a" {
		t.Fatalf("expected dropped image deleted, got %v", m.deleted)
	}

	if _, err := svc.Replace(ctx, []domain.HeroImage{{URL: " "}}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	store.saveErr = errors.New("db down")
	if _, err := svc.Replace(ctx, nil); err == nil {
		t.Fatalf("expected save error")
	}
	if len(m.deleted) != 1 {
		t.Fatalf("nothing may be deleted when the save fails, got %v", m.deleted)
	}
}
