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

	establishmentmodels "immersionfacile/internal/establishment/models"
	"immersionfacile/internal/immersionoffer/handler/mocks"
	"immersionfacile/internal/immersionoffer/models"
	dErrors "immersionfacile/pkg/domain-errors"
	"immersionfacile/pkg/geo"
	"immersionfacile/pkg/requestcontext"
	"immersionfacile/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type HandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.service = mocks.NewMockService(gomock.NewController(s.T()))
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	r.Route("/v1", h.RegisterAPIConsumer)
	s.router = r
}

func asConsumer(req *http.Request, c requestcontext.APIConsumer) *http.Request {
	return req.WithContext(requestcontext.WithAPIConsumer(req.Context(), c))
}

func (s *HandlerSuite) TestSearchFromBody() {
	distance := 120
	s.service.EXPECT().SearchImmersion(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.SearchRequest) ([]models.SearchResult, error) {
			s.Equal("D1102", req.Rome)
			s.Equal(10.0, req.DistanceKm)
			return []models.SearchResult{{Siret: "78000000000001", Rome: "D1102", DistanceM: &distance}}, nil
		})

	body := map[string]any{
		"rome":        "d1102",
		"location":    map[string]float64{"lat": 48.85, "lon": 2.35},
		"distance_km": 10,
	}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/immersion-offers", body))
	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`[{"id":"","rome":"D1102","romeLabel":"","naf":"","nafLabel":"","siret":"78000000000001","name":"",
		"voluntaryToImmersion":false,"location":{"lat":0,"lon":0},"address":"","distance_m":120}]`, rr.Body.String())
}

func (s *HandlerSuite) TestSearchBodyIsValidatedBeforeTheService() {
	body := map[string]any{"location": map[string]float64{"lat": 48.85, "lon": 2.35}, "distance_km": 500}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/immersion-offers", body))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
}

func (s *HandlerSuite) TestSearchFromQuery() {
	s.service.EXPECT().SearchImmersion(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.SearchRequest) ([]models.SearchResult, error) {
			s.Equal(geo.Position{Lat: 47.2184, Lon: -1.5536}, req.Location)
			s.Equal(25.0, req.DistanceKm)
			s.Equal("I1604", req.Rome)
			s.Require().NotNil(req.VoluntaryToImmersion)
			s.True(*req.VoluntaryToImmersion)
			return []models.SearchResult{}, nil
		})

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet,
		"/v1/immersion-offers?rome=I1604&latitude=47.2184&longitude=-1.5536&distance_km=25&voluntaryToImmersion=true"))
	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq("[]", rr.Body.String())
}

func (s *HandlerSuite) TestSearchFromQueryRejectsBadNumbers() {
	for _, path := range []string{
		"/v1/immersion-offers?latitude=abc&longitude=2&distance_km=1",
		"/v1/immersion-offers?latitude=48&distance_km=1",
		"/v1/immersion-offers?latitude=48&longitude=2&distance_km=1&voluntaryToImmersion=maybe",
	} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	}
}

func (s *HandlerSuite) TestGetOfferRequiresAuthorizedConsumer() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/v1/immersion-offers/78000000000001/D1102"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))

	req := asConsumer(testutil.NewRequest(s.T(), http.MethodGet, "/v1/immersion-offers/78000000000001/D1102"),
		requestcontext.APIConsumer{Name: "partner", IsAuthorized: false})
	rr = testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
}

func (s *HandlerSuite) TestGetOffer() {
	s.service.EXPECT().GetImmersionOfferBySiretAndRome(gomock.Any(), "78000000000001", "D1102").
		Return(&models.SearchResult{Siret: "78000000000001", Rome: "D1102", Name: "Boulangerie"}, nil)

	req := asConsumer(testutil.NewRequest(s.T(), http.MethodGet, "/v1/immersion-offers/78000000000001/D1102"),
		requestcontext.APIConsumer{Name: "pole-emploi", IsAuthorized: true})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "name", "Boulangerie")
}

func (s *HandlerSuite) TestGetOfferNotFound() {
	s.service.EXPECT().GetImmersionOfferBySiretAndRome(gomock.Any(), "78000000000001", "A1101").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "No offer found for siret 78000000000001 and rome A1101"))

	req := asConsumer(testutil.NewRequest(s.T(), http.MethodGet, "/v1/immersion-offers/78000000000001/A1101"),
		requestcontext.APIConsumer{Name: "pole-emploi", IsAuthorized: true})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *HandlerSuite) TestContactEstablishment() {
	s.service.EXPECT().ContactEstablishment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.ContactRequest) error {
			s.Equal("78000000000001", req.Siret)
			s.Equal(establishmentmodels.ContactByPhone, req.ContactMode)
			return nil
		})

	body := models.ContactRequest{
		Siret:                         "78000000000001",
		Rome:                          "D1102",
		ContactMode:                   establishmentmodels.ContactByPhone,
		PotentialBeneficiaryFirstName: "Paul",
		PotentialBeneficiaryLastName:  "Durand",
		PotentialBeneficiaryEmail:     "paul@mail.com",
	}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/contact-establishment", body))
	testutil.AssertStatusOK(s.T(), rr)
}

func (s *HandlerSuite) TestContactEstablishmentModeMismatch() {
	s.service.EXPECT().ContactEstablishment(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeBadRequest, "establishment 78000000000001 is contacted by EMAIL, not PHONE"))

	body := models.ContactRequest{
		Siret:                         "78000000000001",
		Rome:                          "D1102",
		ContactMode:                   establishmentmodels.ContactByPhone,
		PotentialBeneficiaryFirstName: "Paul",
		PotentialBeneficiaryLastName:  "Durand",
		PotentialBeneficiaryEmail:     "paul@mail.com",
	}
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/contact-establishment", body))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}
