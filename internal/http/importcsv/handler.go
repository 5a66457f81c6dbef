package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/cuotas/internal/customer"
	custHTTP "github.com/MrJamesThe3rd/cuotas/internal/http/customer"
	"github.com/MrJamesThe3rd/cuotas/internal/http/respond"
	"github.com/MrJamesThe3rd/cuotas/internal/importer"
)

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/customers", h.importCustomers)
	r.Post("/customers/confirm", h.confirm)
}

type importSuccessResponse struct {
	Imported  int                 `json:"imported"`
	Customers []custHTTP.Response `json:"customers"`
}

type duplicateDTO struct {
	Incoming custHTTP.Request  `json:"incoming"`
	Existing custHTTP.Response `json:"existing"`
}

type importConflictResponse struct {
	New        []custHTTP.Request `json:"new"`
	Duplicates []duplicateDTO     `json:"duplicates"`
}

type confirmRequest struct {
	Customers []custHTTP.Request `json:"customers"`
}

// importCustomers takes a multipart "file". When some rows match existing
// customers nothing is stored and 409 lists the new and duplicate rows.
func (h *Handler) importCustomers(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.importSvc.Import(r.Context(), file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if len(result.Duplicates) > 0 {
		resp := importConflictResponse{
			New:        make([]custHTTP.Request, 0, len(result.New)),
			Duplicates: make([]duplicateDTO, 0, len(result.Duplicates)),
		}

		for _, p := range result.New {
			resp.New = append(resp.New, toRequest(p))
		}

		for _, d := range result.Duplicates {
			resp.Duplicates = append(resp.Duplicates, duplicateDTO{
				Incoming: toRequest(d.Incoming),
				Existing: custHTTP.ToResponse(d.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(result.Created))
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	params := make([]customer.CreateParams, 0, len(req.Customers))
	for _, c := range req.Customers {
		params = append(params, c.Params())
	}

	created, err := h.importSvc.Confirm(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(created))
}

func toSuccessResponse(cs []*customer.Customer) importSuccessResponse {
	return importSuccessResponse{
		Imported:  len(cs),
		Customers: custHTTP.ToResponseList(cs),
	}
}

func toRequest(p customer.CreateParams) custHTTP.Request {
	return custHTTP.Request{
		Name:       p.Name,
		DocumentID: p.DocumentID,
		Phone:      p.Phone,
		Email:      p.Email,
		Address:    p.Address,
		Notes:      p.Notes,
	}
}
