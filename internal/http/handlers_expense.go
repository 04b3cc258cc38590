package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"cleverspend/internal/core"
	applog "cleverspend/internal/log"
	"cleverspend/internal/stats"
)

type expensesResponse struct {
	Period   core.Period     `json:"period"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Expenses []core.Expense  `json:"expenses"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := parseExpenseFilter(r)
	if err != nil {
		s.writeError(w, r, "parse expense filter", applog.OpList, err)
		return
	}

	exps, err := s.expenses.Expenses(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, "list expenses", applog.OpList, err)
		return
	}

	NewJSONResponse().Payload(expensesResponse{
		Period:   filter.Period,
		Count:    len(exps),
		Total:    stats.SumExpenses(exps),
		Expenses: exps,
	}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	in, err := req.toInput(s.now().In(s.loc), s.loc)
	if err != nil {
		s.writeError(w, r, "parse expense", applog.OpCreate, err)
		return
	}

	exp, err := s.expenses.AddExpense(r.Context(), in)
	if err != nil {
		s.writeError(w, r, "create expense", applog.OpCreate, err)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).LogExpenseCreated(r.Context(), exp)
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+exp.ID).
		Payload(exp).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, "delete expense", applog.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError logs server-side failures and answers with the mapped status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, msg, op string, err error) {
	ctx := r.Context()
	if core.IsValidation(err) || core.IsNotFound(err) {
		applog.FromContext(ctx).DebugContext(ctx, msg+" rejected", applog.FieldError, err)
	} else {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, msg+" failed", err, op, nil)
	}
	FromError(err).Write(w)
}
