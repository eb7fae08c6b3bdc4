package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gorilla/mux"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pulsarlab/pulsetime/components/spindown"
	"github.com/pulsarlab/pulsetime/timing"
)

func monitoredModel() *timing.Model {
	m := timing.NewModel()
	Expect(m.AddComponent(spindown.New())).To(Succeed())
	Expect(m.ReadParFile(strings.NewReader(`
PSRJ J1234+5678
F0 100.0 1e-10 1
PEPOCH 55000
`))).To(Succeed())
	return m
}

func getWithVars(
	handler http.HandlerFunc,
	vars map[string]string,
) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = mux.SetURLVars(req, vars)

	w := httptest.NewRecorder()
	handler(w, req)

	return w
}

var _ = Describe("Monitor", func() {
	var m *Monitor

	BeforeEach(func() {
		m = NewMonitor()
		m.RegisterModel("J1234+5678", monitoredModel())
	})

	It("should list registered models", func() {
		w := getWithVars(m.listModels, nil)

		var names []string
		Expect(json.Unmarshal(w.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"J1234+5678"}))
	})

	It("should reject a duplicate model name", func() {
		Expect(func() {
			m.RegisterModel("J1234+5678", monitoredModel())
		}).To(Panic())
	})

	It("should serve the parameter table", func() {
		w := getWithVars(m.listParams, map[string]string{"name": "J1234+5678"})

		var params []paramRsp
		Expect(json.Unmarshal(w.Body.Bytes(), &params)).To(Succeed())

		byName := make(map[string]paramRsp)
		for _, p := range params {
			byName[p.Name] = p
		}

		Expect(byName["F0"].Value).To(BeNumerically("~", 100.0, 1e-9))
		Expect(byName["F0"].Frozen).To(BeFalse())
		Expect(byName["F1"].Set).To(BeFalse())
		Expect(byName["PSR"].Unit).To(BeEmpty())
	})

	It("should serve the model file", func() {
		w := getWithVars(m.serveParFile, map[string]string{"name": "J1234+5678"})

		Expect(w.Body.String()).To(ContainSubstring("F0"))
		Expect(w.Body.String()).To(ContainSubstring("UNITS TDB"))
	})

	It("should list the composed components", func() {
		w := getWithVars(m.listComponents, map[string]string{"name": "J1234+5678"})

		var names []string
		Expect(json.Unmarshal(w.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"Spindown"}))
	})

	It("should return 404 for an unknown model", func() {
		w := getWithVars(m.listParams, map[string]string{"name": "nope"})

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should return 404 for an unknown component", func() {
		w := getWithVars(m.componentDetails, map[string]string{
			"name": "J1234+5678",
			"comp": "Binary",
		})

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})
})
