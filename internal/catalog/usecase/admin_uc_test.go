package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/standberg/catalog-service/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockImageStore struct{ mock.Mock }

func (m *MockImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockCompressor struct{ mock.Mock }

func (m *MockCompressor) Compress(filename string, data []byte) (string, []byte, error) {
	args := m.Called(filename, data)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).([]byte), args.Error(2)
}

func newAdminFixture() (*AdminUsecase, *MockProductRepository, *MockImageStore, *MockCompressor) {
	repo := new(MockProductRepository)
	store := new(MockImageStore)
	comp := new(MockCompressor)
	return NewAdminUsecase(repo, store, comp, zap.NewNop()), repo, store, comp
}

func TestSubmitCreateUploadsStagedImages(t *testing.T) {
	uc, repo, store, comp := newAdminFixture()

	comp.On("Compress", "front.png", mock.Anything).Return("front.jpg", []byte("jpeg-a"), nil)
	comp.On("Compress", "interior.png", mock.Anything).Return("interior.jpg", []byte("jpeg-b"), nil)
	store.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("products/") && key[:9] == "products/"
	}), mock.Anything, "image/jpeg").Return("https://cdn.example.com/x.jpg", nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Megane" && len(p.Images) == 2 && p.Images[0].Path != "" && p.Images[1].Path != ""
	})).Return("new-id", nil)
	repo.On("FetchAll", mock.Anything).Return([]domain.Product{}, nil)

	uc.BeginCreate()
	buf := uc.Buffer()
	buf.SetName("Megane")
	buf.SetBrand("Renault")
	buf.SetPrice(15500)
	buf.StageFile("front.png", []byte("png-a"))
	buf.StageFile("interior.png", []byte("png-b"))

	require.NoError(t, uc.Submit(context.Background()))
	assert.False(t, uc.Buffer().Editing(), "buffer is cleared after a successful submit")
	repo.AssertExpectations(t)
	store.AssertNumberOfCalls(t, "Upload", 2)
}

func TestSubmitAbortsWhenOneCompressionFails(t *testing.T) {
	uc, repo, store, comp := newAdminFixture()

	comp.On("Compress", "good.png", mock.Anything).Return("good.jpg", []byte("jpeg"), nil).Maybe()
	comp.On("Compress", "broken.png", mock.Anything).Return("", nil, errors.New("corrupt image"))
	// The healthy file may or may not reach the store before the group
	// cancels; either way its result is discarded.
	store.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("https://cdn.example.com/good.jpg", nil).Maybe()

	uc.BeginCreate()
	buf := uc.Buffer()
	buf.SetName("Megane")
	buf.SetBrand("Renault")
	buf.StageFile("good.png", []byte("a"))
	buf.StageFile("broken.png", []byte("b"))

	err := uc.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpload)
	assert.True(t, uc.Buffer().Editing(), "buffer is preserved for retry")

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSubmitValidationBlocksBeforeAnyIO(t *testing.T) {
	uc, repo, store, comp := newAdminFixture()

	uc.BeginCreate()
	uc.Buffer().StageFile("front.png", []byte("a"))

	err := uc.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)

	comp.AssertNotCalled(t, "Compress", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitUpdateWithoutStagedFilesKeepsExistingImages(t *testing.T) {
	uc, repo, _, _ := newAdminFixture()

	existing := domain.Product{
		ID:    "p1",
		Name:  "Golf",
		Brand: "Volkswagen",
		Price: 17000,
		Images: []domain.ImageRef{
			{URL: "https://cdn.example.com/golf.jpg"}, // legacy, no path
		},
	}
	repo.On("FetchByID", mock.Anything, "p1").Return(&existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		if p.ID != "p1" || p.Price != 15900 || len(p.Images) != 1 {
			return false
		}
		_, ok := p.Images[0].DeletionPath()
		return !ok // the path is never fabricated for carried-over refs
	})).Return(nil)
	repo.On("FetchAll", mock.Anything).Return([]domain.Product{existing}, nil)

	require.NoError(t, uc.BeginEdit(context.Background(), "p1"))
	uc.Buffer().SetPrice(15900)
	require.NoError(t, uc.Submit(context.Background()))
	repo.AssertExpectations(t)
}

func TestSubmitFailureKeepsBufferForRetry(t *testing.T) {
	uc, repo, _, _ := newAdminFixture()

	repo.On("Create", mock.Anything, mock.Anything).Return("", errors.New("write conflict")).Once()
	repo.On("Create", mock.Anything, mock.Anything).Return("new-id", nil).Once()
	repo.On("FetchAll", mock.Anything).Return([]domain.Product{}, nil)

	uc.BeginCreate()
	buf := uc.Buffer()
	buf.SetName("Corsa")
	buf.SetBrand("Opel")
	buf.SetPrice(9900)

	err := uc.Submit(context.Background())
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, "Corsa", uc.Buffer().Fields().Name, "operator edits survive the failure")

	// The retry reuses the untouched buffer.
	require.NoError(t, uc.Submit(context.Background()))
	repo.AssertExpectations(t)
}

func TestBeginEditOverwritesBuffer(t *testing.T) {
	uc, repo, _, _ := newAdminFixture()

	first := domain.Product{ID: "p1", Name: "Golf", Brand: "Volkswagen", Price: 17000}
	second := domain.Product{ID: "p2", Name: "Polo", Brand: "Volkswagen", Price: 12000}
	repo.On("FetchByID", mock.Anything, "p1").Return(&first, nil)
	repo.On("FetchByID", mock.Anything, "p2").Return(&second, nil)

	require.NoError(t, uc.BeginEdit(context.Background(), "p1"))
	uc.Buffer().SetPrice(1)
	uc.Buffer().StageFile("x.png", []byte("a"))

	// A later edit intent overwrites the buffer wholesale, pending images
	// included (last write wins, no cancellation of earlier work).
	require.NoError(t, uc.BeginEdit(context.Background(), "p2"))
	assert.Equal(t, "p2", uc.Buffer().EditingID())
	assert.Equal(t, "Polo", uc.Buffer().Fields().Name)
	assert.Equal(t, 12000.0, uc.Buffer().Fields().Price)
}

func TestDeleteRemovesBlobsThenDocumentThenLocalEntry(t *testing.T) {
	uc, repo, store, _ := newAdminFixture()

	target := domain.Product{
		ID: "p1",
		Images: []domain.ImageRef{
			{URL: "https://cdn.example.com/a.jpg", Path: "products/a.jpg-1"},
			{URL: "https://cdn.example.com/b.jpg", Path: "products/b.jpg-1"},
		},
	}
	repo.On("FetchAll", mock.Anything).Return([]domain.Product{target, {ID: "p2"}}, nil)
	repo.On("FetchByID", mock.Anything, "p1").Return(&target, nil)
	store.On("Delete", mock.Anything, "products/a.jpg-1").Return(nil)
	store.On("Delete", mock.Anything, "products/b.jpg-1").Return(errors.New("object gone"))
	repo.On("Delete", mock.Anything, "p1").Return(nil)

	require.NoError(t, uc.Load(context.Background()))
	// The failed blob deletion is an accepted orphan, not a delete failure.
	require.NoError(t, uc.Delete(context.Background(), "p1"))

	require.Len(t, uc.Products(), 1)
	assert.Equal(t, "p2", uc.Products()[0].ID)
	store.AssertNumberOfCalls(t, "Delete", 2)
	repo.AssertExpectations(t)
}

func TestDeleteLegacyStringImagesSkipsStorage(t *testing.T) {
	uc, repo, store, _ := newAdminFixture()

	target := domain.Product{
		ID: "p1",
		Images: []domain.ImageRef{
			{URL: "https://cdn.example.com/a.jpg"},
			{URL: "https://cdn.example.com/b.jpg"},
		},
	}
	repo.On("FetchByID", mock.Anything, "p1").Return(&target, nil)
	repo.On("Delete", mock.Anything, "p1").Return(nil)

	require.NoError(t, uc.Delete(context.Background(), "p1"))
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestDeleteMissingProductLeavesListUnchanged(t *testing.T) {
	uc, repo, store, _ := newAdminFixture()

	repo.On("FetchAll", mock.Anything).Return([]domain.Product{{ID: "p1"}}, nil)
	repo.On("FetchByID", mock.Anything, "ghost").Return(nil, domain.ErrProductNotFound)

	require.NoError(t, uc.Load(context.Background()))
	err := uc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	assert.Len(t, uc.Products(), 1)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
