package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/scene"
	"github.com/ChicagoDave/roadgrid/pkg/spec"
	"github.com/ChicagoDave/roadgrid/pkg/surface"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
	"github.com/ChicagoDave/roadgrid/pkg/validation"
)

// Server is the local development server. Every request reloads the
// project and regenerates, so edits to city.yaml show up on refresh.
type Server struct {
	projectPath string
	port        int
	log         *zap.Logger
}

// New creates a server for the given project directory. A nil logger
// disables logging.
func New(projectPath string, port int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		projectPath: projectPath,
		port:        port,
		log:         log,
	}
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/spec", s.handleSpec).Methods(http.MethodGet)
	r.HandleFunc("/api/graph", s.handleGraph).Methods(http.MethodGet)
	r.HandleFunc("/api/scene", s.handleScene).Methods(http.MethodGet)
	r.HandleFunc("/api/tiles/{x:-?[0-9]+}/{z:-?[0-9]+}", s.handleTile).Methods(http.MethodGet)
	r.HandleFunc("/api/classify", s.handleClassify).Methods(http.MethodGet)
	r.HandleFunc("/api/trace", s.handleTrace).Methods(http.MethodPost)
	r.HandleFunc("/api/validation", s.handleValidation).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.Use(s.logRequests)
	return r
}

// Start launches the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("roadgrid server starting",
		zap.String("url", "http://localhost"+addr),
		zap.String("project", s.projectPath),
	)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug("request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
		next.ServeHTTP(w, r)
	})
}

// load reads the project and runs schema validation.
func (s *Server) load() (*spec.CitySpec, *validation.Report, error) {
	citySpec, err := spec.LoadProject(s.projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading spec: %w", err)
	}
	return citySpec, validation.ValidateSchema(citySpec), nil
}

// generate loads, validates and runs the pipeline. A schema-invalid spec
// returns its report and no output.
func (s *Server) generate() (*scene.Output, *validation.Report, error) {
	citySpec, report, err := s.load()
	if err != nil {
		return nil, nil, err
	}
	if !report.Valid {
		return nil, report, nil
	}
	out, err := scene.Generate(citySpec, s.log)
	if err != nil {
		return nil, report, err
	}
	report.Merge(out.Report)
	return out, report, nil
}

// generated runs generate and writes the failure response if there is no
// output to serve.
func (s *Server) generated(w http.ResponseWriter) (*scene.Output, bool) {
	out, report, err := s.generate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	if out == nil {
		writeJSON(w, http.StatusUnprocessableEntity, report)
		return nil, false
	}
	return out, true
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>roadgrid</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>roadgrid</h1>
<p>See <code>/api/graph</code>, <code>/api/scene</code>, <code>/api/classify?x=&amp;z=</code>, <code>POST /api/trace</code> and <code>/api/validation</code>.</p>
</div>
</body></html>`)
}

func (s *Server) handleSpec(w http.ResponseWriter, _ *http.Request) {
	citySpec, _, err := s.load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, citySpec)
}

func (s *Server) handleGraph(w http.ResponseWriter, _ *http.Request) {
	out, ok := s.generated(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	writeJSON(w, http.StatusOK, scene.GraphGeoJSON(out.Topology, out.Loops))
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	out, ok := s.generated(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, out.Scene)
}

func (s *Server) handleTile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	x, errX := strconv.Atoi(vars["x"])
	z, errZ := strconv.Atoi(vars["z"])
	if errX != nil || errZ != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad tile coordinate %q,%q", vars["x"], vars["z"]))
		return
	}
	out, ok := s.generated(w)
	if !ok {
		return
	}
	t, found := out.Tiles.Tile(tile.Coord{X: x, Z: z})
	if !found {
		writeError(w, http.StatusNotFound, fmt.Errorf("tile (%d,%d) is not classified", x, z))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// classifyResponse answers a point query.
type classifyResponse struct {
	X      float64        `json:"x"`
	Z      float64        `json:"z"`
	Tile   *tile.Tile     `json:"tile,omitempty"`
	Sample surface.Sample `json:"sample"`
	Height float64        `json:"height"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	z, errZ := strconv.ParseFloat(q.Get("z"), 64)
	if errX != nil || errZ != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("x and z query parameters must be numbers"))
		return
	}
	prev := surface.Unknown
	if name := q.Get("prev"); name != "" {
		p, err := surface.ParseSurface(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		prev = p
	}

	out, ok := s.generated(w)
	if !ok {
		return
	}
	resp := classifyResponse{X: x, Z: z}
	resp.Sample, resp.Tile = surface.Locate(geo.Pt(x, z), out.Tiles, out.LoopPolygons(), out.Params, prev)
	resp.Height = surface.Height(resp.Sample.Surface, out.Params)
	writeJSON(w, http.StatusOK, resp)
}

// traceRequest is a recorded drive: wheel positions per simulation tick.
type traceRequest struct {
	Ticks []map[surface.WheelID]geo.Point2D `json:"ticks"`
}

// traceResponse carries the per-tick results and the surfaces committed
// after the last tick.
type traceResponse struct {
	Results []surface.Result                    `json:"results"`
	Final   map[surface.WheelID]surface.Surface `json:"final"`
}

// maxTraceBytes bounds the request body of a trace.
const maxTraceBytes = 4 << 20

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTraceBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding trace: %w", err))
		return
	}

	out, ok := s.generated(w)
	if !ok {
		return
	}
	var resp traceResponse
	resp.Results, resp.Final = replay(out.Classifier(s.log), out.Tiles, req.Ticks)
	writeJSON(w, http.StatusOK, resp)
}

// replay runs a trace through c and reads back the committed surface of
// every wheel present on the last tick.
func replay(c *surface.Classifier, tiles tile.Lookup, ticks []map[surface.WheelID]geo.Point2D) ([]surface.Result, map[surface.WheelID]surface.Surface) {
	results := c.Replay(ticks, tiles)
	final := make(map[surface.WheelID]surface.Surface)
	if n := len(ticks); n > 0 {
		for id := range ticks[n-1] {
			final[id] = c.Surface(id)
		}
	}
	return results, final
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	_, report, err := s.generate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
