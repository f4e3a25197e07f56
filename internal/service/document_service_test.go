package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

type fakeUploader struct {
	lastName string
}

func (f *fakeUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	f.lastName = name
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	return "https://files.example.com/" + name, nil
}

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buffer bytes.Buffer
	writer := multipart.NewWriter(&buffer)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buffer)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(buffer.Len())+1024))

	return req.MultipartForm.File["file"][0]
}

type documentFixture struct {
	db          *gorm.DB
	svc         *documentService
	uploader    *fakeUploader
	program     models.Scholarship
	student     models.User
	committee   models.User
	application models.Application
}

func newDocumentFixture(t *testing.T, name string) *documentFixture {
	t.Helper()

	db := openServiceDB(t, name)

	program := models.Scholarship{Name: "Merit Scholarship", Slug: "merit", IsActive: true}
	require.NoError(t, db.Create(&program).Error)

	student := models.User{Name: "Ana", Email: name + "-ana@example.com", PasswordHash: "x", Role: models.RoleStudent, ScholarshipID: &program.ID}
	committee := models.User{Name: "Carl", Email: name + "-carl@example.com", PasswordHash: "x", Role: models.RoleCommittee, ScholarshipID: &program.ID}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&committee).Error)

	application := models.Application{ScholarshipID: program.ID, UserID: student.ID, Status: models.StatusDraft}
	require.NoError(t, db.Create(&application).Error)

	uploader := &fakeUploader{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewDocumentService(
		repository.NewDocumentRepository(db),
		repository.NewApplicationRepository(db),
		validate,
		uploader,
		zerolog.Nop(),
	).(*documentService)

	return &documentFixture{
		db:          db,
		svc:         svc,
		uploader:    uploader,
		program:     program,
		student:     student,
		committee:   committee,
		application: application,
	}
}

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF")

func TestDocumentServiceUploadAcceptsAllowedTypes(t *testing.T) {
	f := newDocumentFixture(t, "doc_svc_upload")
	ctx := context.Background()
	scope := tenancy.ScopeFor(tenancy.IdentityOf(f.student))

	file := multipartFile(t, "transcript.pdf", pdfContent)
	uploaded, err := f.svc.Upload(ctx, scope, dto.DocumentUploadRequest{
		ApplicationID: f.application.ID,
		DocumentType:  "transcript",
	}, file)
	require.NoError(t, err)
	require.Equal(t, "transcript", uploaded.DocumentType)
	require.Equal(t, "application/pdf", uploaded.MimeType)
	require.Equal(t, "https://files.example.com/transcript.pdf", uploaded.FilePath)
	require.False(t, uploaded.IsVerified)
	require.Equal(t, "transcript.pdf", f.uploader.lastName)
}

func TestDocumentServiceUploadRejectsUnsupportedTypes(t *testing.T) {
	f := newDocumentFixture(t, "doc_svc_badtype")
	ctx := context.Background()
	scope := tenancy.ScopeFor(tenancy.IdentityOf(f.student))

	file := multipartFile(t, "notes.txt", []byte("plain text, not a document"))
	_, err := f.svc.Upload(ctx, scope, dto.DocumentUploadRequest{
		ApplicationID: f.application.ID,
		DocumentType:  "transcript",
	}, file)
	require.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestDocumentServiceUploadRequiresOwnership(t *testing.T) {
	f := newDocumentFixture(t, "doc_svc_owner")
	ctx := context.Background()

	peer := models.User{Name: "Mia", Email: "doc-svc-owner-mia@example.com", PasswordHash: "x", Role: models.RoleStudent, ScholarshipID: &f.program.ID}
	require.NoError(t, f.db.Create(&peer).Error)

	file := multipartFile(t, "transcript.pdf", pdfContent)
	_, err := f.svc.Upload(ctx, tenancy.ScopeFor(tenancy.IdentityOf(peer)), dto.DocumentUploadRequest{
		ApplicationID: f.application.ID,
		DocumentType:  "transcript",
	}, file)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestDocumentServiceVerifyStampsAndClears(t *testing.T) {
	f := newDocumentFixture(t, "doc_svc_verify")
	ctx := context.Background()

	document := models.Document{
		ApplicationID: f.application.ID,
		DocumentType:  "transcript",
		FilePath:      "https://files.example.com/transcript.pdf",
		OriginalName:  "transcript.pdf",
		MimeType:      "application/pdf",
		FileSize:      int64(len(pdfContent)),
	}
	require.NoError(t, f.db.Create(&document).Error)

	studentScope := tenancy.ScopeFor(tenancy.IdentityOf(f.student))
	_, err := f.svc.Verify(ctx, studentScope, document.ID, true)
	require.ErrorIs(t, err, ErrStatusNotAllowed)

	committeeScope := tenancy.ScopeFor(tenancy.IdentityOf(f.committee))
	verified, err := f.svc.Verify(ctx, committeeScope, document.ID, true)
	require.NoError(t, err)
	require.True(t, verified.IsVerified)
	require.NotNil(t, verified.VerifiedAt)
	require.NotNil(t, verified.VerifiedBy)
	require.Equal(t, f.committee.ID, *verified.VerifiedBy)

	cleared, err := f.svc.Verify(ctx, committeeScope, document.ID, false)
	require.NoError(t, err)
	require.False(t, cleared.IsVerified)
	require.Nil(t, cleared.VerifiedAt)
	require.Nil(t, cleared.VerifiedBy)
}

func TestDocumentServiceScopeHidesForeignDocuments(t *testing.T) {
	f := newDocumentFixture(t, "doc_svc_scope")
	ctx := context.Background()

	other := models.Scholarship{Name: "Sports Scholarship", Slug: "sports", IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)
	outsider := models.User{Name: "Ben", Email: "doc-svc-scope-ben@example.com", PasswordHash: "x", Role: models.RoleStudent, ScholarshipID: &other.ID}
	require.NoError(t, f.db.Create(&outsider).Error)
	foreignApp := models.Application{ScholarshipID: other.ID, UserID: outsider.ID, Status: models.StatusSubmitted}
	require.NoError(t, f.db.Create(&foreignApp).Error)

	document := models.Document{
		ApplicationID: foreignApp.ID,
		DocumentType:  "transcript",
		FilePath:      "https://files.example.com/other.pdf",
		OriginalName:  "other.pdf",
		MimeType:      "application/pdf",
		FileSize:      10,
	}
	require.NoError(t, f.db.Create(&document).Error)

	committeeScope := tenancy.ScopeFor(tenancy.IdentityOf(f.committee))
	_, err := f.svc.Get(ctx, committeeScope, document.ID)
	require.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = f.svc.Verify(ctx, committeeScope, document.ID, true)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}
