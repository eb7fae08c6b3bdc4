// Package monitoring serves a live HTTP inspector for composed timing
// models: the parameter table, the component list and per-component state,
// process resources, and CPU profiles of long-running evaluations.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/pulsarlab/pulsetime/param"
	"github.com/pulsarlab/pulsetime/timing"
)

// Monitor serves registered models over HTTP. Models are inspected
// read-only; the server must not run while another goroutine mutates a
// registered model's parameters.
type Monitor struct {
	names      []string
	models     map[string]*timing.Model
	portNumber int
	useBrowser bool
}

// NewMonitor creates a Monitor.
func NewMonitor() *Monitor {
	return &Monitor{models: make(map[string]*timing.Model)}
}

// WithPortNumber sets the port the monitor listens on.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser opens the inspector in the default browser once the server
// is listening.
func (m *Monitor) WithBrowser() *Monitor {
	m.useBrowser = true
	return m
}

// RegisterModel adds a model to be inspected under the given name.
func (m *Monitor) RegisterModel(name string, model *timing.Model) {
	if _, dup := m.models[name]; dup {
		panic("model " + name + " already registered")
	}

	m.names = append(m.names, name)
	m.models[name] = model
}

// StartServer starts serving and returns the root URL.
func (m *Monitor) StartServer() string {
	r := mux.NewRouter()
	r.HandleFunc("/api/models", m.listModels)
	r.HandleFunc("/api/model/{name}/params", m.listParams)
	r.HandleFunc("/api/model/{name}/parfile", m.serveParFile)
	r.HandleFunc("/api/model/{name}/components", m.listComponents)
	r.HandleFunc("/api/model/{name}/component/{comp}", m.componentDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring timing models at %s\n", url)

	go func() {
		dieOnErr(http.Serve(listener, r))
	}()

	if m.useBrowser {
		dieOnErr(browser.OpenURL(url))
	}

	return url
}

func (m *Monitor) listModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.names)
}

type paramRsp struct {
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
	Set         bool    `json:"set"`
	Frozen      bool    `json:"frozen"`
	Value       float64 `json:"value,omitempty"`
	Uncertainty float64 `json:"uncertainty,omitempty"`
}

func (m *Monitor) listParams(w http.ResponseWriter, r *http.Request) {
	model := m.findModelOr404(w, mux.Vars(r)["name"])
	if model == nil {
		return
	}

	rsp := make([]paramRsp, 0, len(model.ParamNames()))
	for _, name := range model.ParamNames() {
		p, _ := model.Param(name)

		entry := paramRsp{
			Name:        p.Name(),
			Unit:        string(p.Unit()),
			Description: p.Description(),
			Set:         p.IsSet(),
			Frozen:      p.Frozen(),
		}

		if np, ok := p.(param.Numeric); ok {
			entry.Value = np.Value()
			entry.Uncertainty = np.Uncertainty()
		}

		rsp = append(rsp, entry)
	}

	writeJSON(w, rsp)
}

func (m *Monitor) serveParFile(w http.ResponseWriter, r *http.Request) {
	model := m.findModelOr404(w, mux.Vars(r)["name"])
	if model == nil {
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	_, err := w.Write([]byte(model.AsParFile()))
	dieOnErr(err)
}

func (m *Monitor) listComponents(w http.ResponseWriter, r *http.Request) {
	model := m.findModelOr404(w, mux.Vars(r)["name"])
	if model == nil {
		return
	}

	names := make([]string, 0, len(model.Components()))
	for _, c := range model.Components() {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) componentDetails(w http.ResponseWriter, r *http.Request) {
	model := m.findModelOr404(w, mux.Vars(r)["name"])
	if model == nil {
		return
	}

	compName := mux.Vars(r)["comp"]
	for _, c := range model.Components() {
		if c.Name() != compName {
			continue
		}

		serializer := goseth.NewSerializer()
		serializer.SetRoot(c)
		serializer.SetMaxDepth(1)
		dieOnErr(serializer.Serialize(w))

		return
	}

	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "Component %s not found", compName)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	dieOnErr(pprof.StartCPUProfile(buf))
	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func (m *Monitor) findModelOr404(
	w http.ResponseWriter,
	name string,
) *timing.Model {
	model, ok := m.models[name]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Model not found"))
		dieOnErr(err)
		return nil
	}

	return model
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(data)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
