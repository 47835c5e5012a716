package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/hazyhaar/rolodex/pkg/contacts"
	"github.com/hazyhaar/rolodex/pkg/kit"
	"github.com/hazyhaar/rolodex/pkg/lookupkey"
)

// NewRouter returns an http.Handler with all contact engine routes.
func NewRouter(store *contacts.Store) http.Handler {
	mux := http.NewServeMux()
	h := &handler{
		search:     searchEndpoint(store),
		phone:      phoneEndpoint(store),
		resolveKey: resolveKeyEndpoint(store),
		store:      store,
	}

	mux.HandleFunc("GET /v1/search", h.handleSearch)
	mux.HandleFunc("GET /v1/phone/{number}", h.handlePhone)
	mux.HandleFunc("GET /v1/lookup/{key}", h.handleLookup)
	mux.HandleFunc("GET /v1/contacts/{id}", h.handleGetContact)
	mux.HandleFunc("GET /v1/contacts/{id}/key", h.handleContactKey)
	mux.HandleFunc("POST /v1/contacts", h.handleCreateContact)
	mux.HandleFunc("POST /v1/contacts/{id}/data", h.handleAddData)
	mux.HandleFunc("PUT /v1/data/{id}", h.handleUpdateData)
	mux.HandleFunc("DELETE /v1/data/{id}", h.handleDeleteData)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(mux)
}

type handler struct {
	search     kit.Endpoint
	phone      kit.Endpoint
	resolveKey kit.Endpoint
	store      *contacts.Store
}

// --- search by name prefix ---

func (h *handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	types, err := parseNameTypes(r.URL.Query().Get("types"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.search(r.Context(), &searchReq{Prefix: q, Types: types})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- phone lookup ---

func (h *handler) handlePhone(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if number == "" {
		writeError(w, http.StatusBadRequest, "missing number")
		return
	}

	resp, err := h.phone(r.Context(), &phoneReq{
		Number: number,
		E164:   r.URL.Query().Get("e164"),
		Strict: r.URL.Query().Get("strict") == "true",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- lookup key resolution ---

func (h *handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing key")
		return
	}

	resp, err := h.resolveKey(r.Context(), &resolveReq{Key: key})
	switch {
	case errors.Is(err, lookupkey.ErrMalformedKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contacts.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

// --- single contact + its key ---

func (h *handler) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rc, err := h.store.RawContact(id)
	if errors.Is(err, contacts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rc)
}

func (h *handler) handleContactKey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rc, err := h.store.RawContact(id)
	if errors.Is(err, contacts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "contact not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	key, err := h.store.LookupKey(rc.AggregateID)
	if errors.Is(err, contacts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "contact has no aggregate")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"lookup_key": key})
}

// --- create contact (with optional initial data rows) ---

type httpDataRow struct {
	Kind           string `json:"kind"`
	IsPrimary      bool   `json:"is_primary,omitempty"`
	IsSuperPrimary bool   `json:"is_super_primary,omitempty"`
	Value          string `json:"value,omitempty"`

	Prefix         string `json:"prefix,omitempty"`
	GivenName      string `json:"given_name,omitempty"`
	MiddleName     string `json:"middle_name,omitempty"`
	FamilyName     string `json:"family_name,omitempty"`
	Suffix         string `json:"suffix,omitempty"`
	PhoneticGiven  string `json:"phonetic_given,omitempty"`
	PhoneticFamily string `json:"phonetic_family,omitempty"`
}

type httpCreateContact struct {
	AggregateID int64         `json:"aggregate_id,omitempty"`
	AccountType string        `json:"account_type,omitempty"`
	AccountName string        `json:"account_name,omitempty"`
	DataSet     string        `json:"data_set,omitempty"`
	SourceID    string        `json:"source_id,omitempty"`
	Data        []httpDataRow `json:"data,omitempty"`
}

func (h *handler) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 256*1024)
	var req httpCreateContact
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rc := contacts.RawContact{
		AggregateID: req.AggregateID,
		AccountType: req.AccountType,
		AccountName: req.AccountName,
		DataSet:     req.DataSet,
		SourceID:    req.SourceID,
	}
	id, err := h.store.InsertRawContact(&rc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var dataIDs []int64
	for _, d := range req.Data {
		row, err := toDataRow(d, id)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		dataID, err := h.store.InsertData(row)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		dataIDs = append(dataIDs, dataID)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "data_ids": dataIDs})
}

// --- attribute rows ---

func (h *handler) handleAddData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req httpDataRow
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	row, err := toDataRow(req, id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dataID, err := h.store.InsertData(row)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": dataID})
}

func (h *handler) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req httpDataRow
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	existing, err := h.store.DataRow(id)
	if errors.Is(err, contacts.ErrNotFound) {
		writeError(w, http.StatusNotFound, "data row not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	row, err := toDataRow(req, existing.RawContactID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	row.ID = id
	if err := h.store.UpdateData(row); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *handler) handleDeleteData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteData(id); err != nil {
		if errors.Is(err, contacts.ErrNotFound) {
			writeError(w, http.StatusNotFound, "data row not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- health ---

type healthResponse struct {
	Status   string `json:"status"`
	Contacts int    `json:"contacts"`
	DataRows int    `json:"data_rows"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	nContacts, nData, err := h.store.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Contacts: nContacts,
		DataRows: nData,
	})
}

// --- helpers ---

func toDataRow(d httpDataRow, rawContactID int64) (*contacts.DataRow, error) {
	kind, err := parseDataKind(d.Kind)
	if err != nil {
		return nil, err
	}
	return &contacts.DataRow{
		RawContactID:   rawContactID,
		Kind:           kind,
		IsPrimary:      d.IsPrimary,
		IsSuperPrimary: d.IsSuperPrimary,
		Value:          d.Value,
		Prefix:         d.Prefix,
		GivenName:      d.GivenName,
		MiddleName:     d.MiddleName,
		FamilyName:     d.FamilyName,
		Suffix:         d.Suffix,
		PhoneticGiven:  d.PhoneticGiven,
		PhoneticFamily: d.PhoneticFamily,
	}, nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
