package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"immersionfacile/internal/convention/conventiontest"
	"immersionfacile/internal/convention/handler/mocks"
	"immersionfacile/internal/convention/models"
	notificationservice "immersionfacile/internal/notification/service"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,LinkSharer
type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	sharer  *mocks.MockLinkSharer
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.sharer = mocks.NewMockLinkSharer(ctrl)
	h := New(s.service, s.sharer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterMagicLink(r)
	h.RegisterAdmin(r)
	s.router = r
}

func withActor(req *http.Request, id string, role models.Role) *http.Request {
	return testutil.WithConventionActor(req, id, string(role))
}

func (s *HandlerSuite) TestAddReturnsID() {
	s.service.EXPECT().AddConvention(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *models.Convention) (models.ID, error) {
			return c.ID, nil
		})

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/demandes-immersion", conventiontest.New().Build())
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "id", conventiontest.DefaultID)
}

func (s *HandlerSuite) TestAddRejectsInvalidConvention() {
	body := conventiontest.New().WithEmails("same@example.com", "same@example.com").Build()

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/demandes-immersion", body))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
}

func (s *HandlerSuite) TestAddConflict() {
	s.service.EXPECT().AddConvention(gomock.Any(), gomock.Any()).
		Return("", dErrors.New(dErrors.CodeConflict, "convention already exists"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/demandes-immersion", conventiontest.New().Build())
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeConflict))
}

func (s *HandlerSuite) TestRenewMagicLink() {
	s.service.EXPECT().RenewMagicLink(gomock.Any(), "expired.jwt", "http://front/verifier?jwt=%jwt%").Return(nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/renew-magic-link", map[string]string{
		"expiredJwt": "expired.jwt",
		"linkFormat": "http://front/verifier?jwt=%jwt%",
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *HandlerSuite) TestRenewMagicLinkRequiresToken() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/renew-magic-link", map[string]string{
		"linkFormat": "http://front/verifier?jwt=%jwt%",
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
}

func (s *HandlerSuite) TestShareLink() {
	s.sharer.EXPECT().ShareConventionLinkByEmail(gomock.Any(), notificationservice.ShareLinkRequest{
		Email:          "friend@mail.com",
		ConventionLink: "http://front/demande-immersion?email=a",
	}).Return(nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/share-immersion-demand", map[string]string{
		"email":          " friend@mail.com ",
		"conventionLink": "http://front/demande-immersion?email=a",
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *HandlerSuite) TestGetRequiresMagicLink() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/auth/demandes-immersion/conv-1"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
}

func (s *HandlerSuite) TestGetForbidsOtherConvention() {
	req := withActor(testutil.NewRequest(s.T(), http.MethodGet, "/auth/demandes-immersion/conv-2"), "conv-1", models.RoleBeneficiary)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
}

func (s *HandlerSuite) TestGetReturnsConvention() {
	read := &models.ConventionRead{Convention: conventiontest.New().Build(), AgencyName: "Agence Paris"}
	s.service.EXPECT().GetConvention(gomock.Any(), conventiontest.DefaultID).Return(read, nil)

	req := withActor(testutil.NewRequest(s.T(), http.MethodGet, "/auth/demandes-immersion/"+conventiontest.DefaultID),
		conventiontest.DefaultID, models.RoleBeneficiary)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "agencyName", "Agence Paris")
}

func (s *HandlerSuite) TestUpdate() {
	s.service.EXPECT().UpdateConvention(gomock.Any(), conventiontest.DefaultID, gomock.Any()).Return(nil)

	body := conventiontest.New().WithStatus(models.StatusDraft).Build()
	req := withActor(testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/demandes-immersion/"+conventiontest.DefaultID, body),
		conventiontest.DefaultID, models.RoleBeneficiary)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "id", conventiontest.DefaultID)
}

func (s *HandlerSuite) TestUpdateStatusUsesLinkRole() {
	s.service.EXPECT().UpdateConventionStatus(gomock.Any(), "conv-1", models.StatusRejected, models.RoleValidator, "incomplete").Return(nil)

	req := withActor(testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/update-application-status/conv-1", map[string]string{
		"status":        "REJECTED",
		"justification": " incomplete ",
	}), "conv-1", models.RoleValidator)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *HandlerSuite) TestUpdateStatusRejectsUnknownStatus() {
	req := withActor(testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/update-application-status/conv-1", map[string]string{
		"status": "ARCHIVED",
	}), "conv-1", models.RoleValidator)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
}

func (s *HandlerSuite) TestUpdateStatusForbiddenTransition() {
	s.service.EXPECT().UpdateConventionStatus(gomock.Any(), "conv-1", models.StatusValidated, models.RoleBeneficiary, "").
		Return(dErrors.New(dErrors.CodeForbidden, "role beneficiary cannot move a convention to VALIDATED"))

	req := withActor(testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/update-application-status/conv-1", map[string]string{
		"status": "VALIDATED",
	}), "conv-1", models.RoleBeneficiary)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
}

func (s *HandlerSuite) TestSign() {
	s.service.EXPECT().SignConvention(gomock.Any(), "conv-1", models.RoleEstablishment).Return(&models.Convention{ID: "conv-1"}, nil)

	req := withActor(testutil.NewRequest(s.T(), http.MethodPost, "/auth/sign-application/conv-1"), "conv-1", models.RoleEstablishment)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "id", "conv-1")
}

func (s *HandlerSuite) TestAdminListPassesFilters() {
	s.service.EXPECT().ListAdminConventions(gomock.Any(), models.ListFilter{
		Status:   models.StatusInReview,
		AgencyID: "agency-1",
	}).Return([]*models.ConventionRead{}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/admin/demandes-immersion?status=IN_REVIEW&agencyId=agency-1"))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *HandlerSuite) TestAdminGetNotFound() {
	s.service.EXPECT().GetConvention(gomock.Any(), "missing").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "convention missing not found"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/admin/demandes-immersion/missing"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}
