package yearend_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/yearend"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func withYear(req *http.Request, year string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("year", year)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func hrRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	user := &internal.User{ID: 7, Email: "hr@example.com", Role: "HR"}
	return req.WithContext(internal.ContextWithUser(context.Background(), user))
}

var _ = Describe("Year-end Handler", func() {
	var (
		f       *fixture
		handler *yearend.Handler
	)

	BeforeEach(func() {
		f = newFixture()
		handler = yearend.NewHandler(f.service)
	})

	It("processes carry-over from a camelCase body", func() {
		f.quota(f.alice, f.annual, 2024, "12", "4")

		body := map[string]interface{}{
			"targetYear":         2025,
			"quotas":             map[string]string{"ANNUAL": "10", "SICK": "30"},
			"carryConfigs":       map[string]string{"ANNUAL": "6"},
			"maxConsecutiveDays": map[string]int{"ANNUAL": 14},
		}
		w := httptest.NewRecorder()
		handler.ProcessCarryOver(w, hrRequest(http.MethodPost, "/leaves/process-carry-over", body))

		Expect(w.Code).To(Equal(http.StatusOK))
		var result yearend.Result
		Expect(json.NewDecoder(w.Body).Decode(&result)).To(Succeed())
		Expect(result.ClosedYear).To(Equal(2024))
		Expect(result.QuotasWritten).To(Equal(4))
		Expect(f.load(f.alice, f.annual, 2025).TotalDays.Equal(d("16"))).To(BeTrue())
	})

	It("answers 409 when the source year is already closed", func() {
		w := httptest.NewRecorder()
		handler.ProcessCarryOver(w, hrRequest(http.MethodPost, "/leaves/process-carry-over", standardRun()))
		Expect(w.Code).To(Equal(http.StatusOK))

		w = httptest.NewRecorder()
		handler.ProcessCarryOver(w, hrRequest(http.MethodPost, "/leaves/process-carry-over", standardRun()))
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(w.Body.String()).To(ContainSubstring(string(internal.ErrCodeYearAlreadyClosed)))
	})

	It("answers 400 for malformed numbers", func() {
		body := map[string]interface{}{
			"targetYear": 2025,
			"quotas":     map[string]string{"ANNUAL": "ten"},
		}
		w := httptest.NewRecorder()
		handler.ProcessCarryOver(w, hrRequest(http.MethodPost, "/leaves/process-carry-over", body))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("answers 404 when reopening an unknown year", func() {
		w := httptest.NewRecorder()
		handler.ReopenYear(w, hrRequest(http.MethodPost, "/leaves/reopen-year", map[string]interface{}{"year": 2019, "reason": "audit"}))
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("creates and lists system configs", func() {
		w := httptest.NewRecorder()
		handler.CreateSystemConfig(w, hrRequest(http.MethodPost, "/leaves/system-configs", map[string]int{"year": 2026}))
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = httptest.NewRecorder()
		handler.ListSystemConfigs(w, hrRequest(http.MethodGet, "/leaves/system-configs", nil))
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp yearend.SystemConfigsResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Configs).To(HaveLen(1))
		Expect(resp.Configs[0].Year).To(Equal(2026))
	})

	It("fetches one system config by year", func() {
		w := httptest.NewRecorder()
		handler.CreateSystemConfig(w, hrRequest(http.MethodPost, "/leaves/system-configs", map[string]int{"year": 2026}))
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = httptest.NewRecorder()
		handler.GetSystemConfig(w, withYear(hrRequest(http.MethodGet, "/leaves/system-configs/2026", nil), "2026"))
		Expect(w.Code).To(Equal(http.StatusOK))
		var cfg yearend.SystemConfig
		Expect(json.NewDecoder(w.Body).Decode(&cfg)).To(Succeed())
		Expect(cfg.Year).To(Equal(2026))
		Expect(cfg.IsClosed).To(BeFalse())

		w = httptest.NewRecorder()
		handler.GetSystemConfig(w, withYear(hrRequest(http.MethodGet, "/leaves/system-configs/1999", nil), "1999"))
		Expect(w.Code).To(Equal(http.StatusNotFound))

		w = httptest.NewRecorder()
		handler.GetSystemConfig(w, withYear(hrRequest(http.MethodGet, "/leaves/system-configs/abc", nil), "abc"))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("requires an authenticated user", func() {
		req := httptest.NewRequest(http.MethodPost, "/leaves/reopen-year", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		handler.ReopenYear(w, req)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
