package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mcclellann/paycalc/pkg/calculator"
	"github.com/mcclellann/paycalc/pkg/config"
	"github.com/mcclellann/paycalc/pkg/history"
	"github.com/mcclellann/paycalc/pkg/models"
	"github.com/mcclellann/paycalc/pkg/rules"
	"github.com/mcclellann/paycalc/pkg/store"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Server holds the calculation history and the storage behind it.
type Server struct {
	history *history.History
	storage store.Storage // Keep a reference to the storage to close it
	log     logrus.FieldLogger
}

func NewServer(s store.Storage, r *rules.Rules, log logrus.FieldLogger) *Server {
	return &Server{
		history: history.New(calculator.New(r, log), s, log),
		storage: s,
		log:     log,
	}
}

// field accepts a JSON string, number or bool and keeps its text so the calculator
// parsers can read it defensively.
type field string

func (f *field) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = field(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = field(b)
	return nil
}

func (f field) amount() decimal.Decimal {
	return calculator.ParseAmount(string(f))
}

func (f field) count() int {
	return calculator.ParseCount(string(f))
}

func (f field) percent() float64 {
	return calculator.ParsePercent(string(f))
}

func (f field) flag() bool {
	b, err := strconv.ParseBool(string(f))
	return err == nil && b
}

type calculationResponse struct {
	ID     *uuid.UUID `json:"id,omitempty"`
	Result any        `json:"result"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// maxRequestBytes caps calculator request bodies.
const maxRequestBytes = 64 << 10

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		} else {
			http.Error(w, fmt.Sprintf("Failed to read request body: %v", err), http.StatusBadRequest)
		}
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// respondCalculation serves a result even when recording it failed; the id is then
// omitted and the status is 200 instead of 201.
func (s *Server) respondCalculation(w http.ResponseWriter, result any, calc *models.Calculation, err error) {
	if err != nil || calc == nil {
		s.log.WithError(err).Warn("serving calculation that was not recorded")
		writeJSON(w, http.StatusOK, calculationResponse{Result: result})
		return
	}
	writeJSON(w, http.StatusCreated, calculationResponse{ID: &calc.ID, Result: result})
}

func (s *Server) taxHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GrossSalary        field `json:"gross_salary"`
		Dependents         field `json:"dependents"`
		PersonalDeduction  field `json:"personal_deduction"`
		InsuranceDeduction field `json:"insurance_deduction"`
		OtherDeductions    field `json:"other_deductions"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	res, calc, err := s.history.Tax(models.TaxInput{
		GrossSalary:        req.GrossSalary.amount(),
		Dependents:         req.Dependents.count(),
		PersonalDeduction:  req.PersonalDeduction.amount(),
		InsuranceDeduction: calculator.ParseOptionalAmount(string(req.InsuranceDeduction)),
		OtherDeductions:    req.OtherDeductions.amount(),
	})
	s.respondCalculation(w, res, calc, err)
}

func (s *Server) salaryHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount              field                  `json:"amount"`
		Direction           models.SalaryDirection `json:"direction"`
		Dependents          field                  `json:"dependents"`
		IncludeUnemployment field                  `json:"include_unemployment"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	res, calc, err := s.history.Salary(models.SalaryInput{
		Amount:              req.Amount.amount(),
		Direction:           req.Direction,
		Dependents:          req.Dependents.count(),
		IncludeUnemployment: req.IncludeUnemployment.flag(),
	})
	s.respondCalculation(w, res, calc, err)
}

func (s *Server) compoundInterestHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Principal           field `json:"principal"`
		AnnualRate          field `json:"annual_rate"`
		Years               field `json:"years"`
		CompoundFrequency   field `json:"compound_frequency"`
		MonthlyContribution field `json:"monthly_contribution"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	res, calc, err := s.history.CompoundInterest(models.CompoundInterestInput{
		Principal:           req.Principal.amount(),
		AnnualRate:          req.AnnualRate.percent(),
		Years:               req.Years.count(),
		CompoundFrequency:   req.CompoundFrequency.count(),
		MonthlyContribution: req.MonthlyContribution.amount(),
	})
	s.respondCalculation(w, res, calc, err)
}

func (s *Server) socialInsuranceHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AverageSalary      field                `json:"average_salary"`
		ContributionMonths field                `json:"contribution_months"`
		InsuranceType      models.InsuranceType `json:"insurance_type"`
		RegionLevel        field                `json:"region_level"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	res, calc, err := s.history.SocialInsurance(models.SocialInsuranceInput{
		AverageSalary:      req.AverageSalary.amount(),
		ContributionMonths: req.ContributionMonths.count(),
		InsuranceType:      req.InsuranceType,
		RegionLevel:        req.RegionLevel.count(),
	})
	s.respondCalculation(w, res, calc, err)
}

func (s *Server) unemploymentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AverageSalary      field                `json:"average_salary"`
		ContributionMonths field                `json:"contribution_months"`
		Age                field                `json:"age"`
		RegionLevel        field                `json:"region_level"`
		VocationalTraining field                `json:"vocational_training"`
		Policy             models.BenefitPolicy `json:"policy"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	res, calc, err := s.history.Unemployment(models.UnemploymentInput{
		AverageSalary:      req.AverageSalary.amount(),
		ContributionMonths: req.ContributionMonths.count(),
		Age:                req.Age.count(),
		RegionLevel:        req.RegionLevel.count(),
		VocationalTraining: req.VocationalTraining.flag(),
		Policy:             req.Policy,
	})
	s.respondCalculation(w, res, calc, err)
}

func (s *Server) rulesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.history.Calculator().Rules())
}

func (s *Server) listCalculationsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if l := query.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	calcs, err := s.history.List(models.CalculationKind(query.Get("kind")), limit)
	if err != nil {
		if errors.Is(err, history.ErrUnknownKind) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, calcs)
}

func calculationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid calculation ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) getCalculationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := calculationID(w, r)
	if !ok {
		return
	}

	calc, err := s.history.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Calculation not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, calc)
}

func (s *Server) deleteCalculationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := calculationID(w, r)
	if !ok {
		return
	}

	if err := s.history.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Calculation not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request served")
	})
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/tax", s.taxHandler).Methods("POST")
	router.HandleFunc("/salary", s.salaryHandler).Methods("POST")
	router.HandleFunc("/compound-interest", s.compoundInterestHandler).Methods("POST")
	router.HandleFunc("/insurance/social", s.socialInsuranceHandler).Methods("POST")
	router.HandleFunc("/insurance/unemployment", s.unemploymentHandler).Methods("POST")

	router.HandleFunc("/rules", s.rulesHandler).Methods("GET")

	router.HandleFunc("/calculations", s.listCalculationsHandler).Methods("GET")
	router.HandleFunc("/calculations/{id}", s.getCalculationHandler).Methods("GET")
	router.HandleFunc("/calculations/{id}", s.deleteCalculationHandler).Methods("DELETE")

	return router
}

// schedulePrune registers the history prune job. The caller starts and stops the
// returned scheduler.
func (s *Server) schedulePrune(spec string, retention time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := s.history.Prune(retention); err != nil {
			s.log.WithError(err).Error("history prune failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", spec, err)
	}
	return c, nil
}

func loadRules(path string) (*rules.Rules, error) {
	if path == "" {
		return rules.Default(), nil
	}
	return rules.Load(path)
}

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	r, err := loadRules(cfg.RulesFile)
	if err != nil {
		logger.Fatalf("Failed to load rules: %v", err)
	}

	storage, err := store.Open(cfg.DBDriver, cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to initialize %s store: %v", cfg.DBDriver, err)
	}
	defer storage.Close()
	logger.WithField("driver", cfg.DBDriver).Info("Database connection established and schema initialized")

	server := NewServer(storage, r, logger)

	if cfg.PruneSchedule != "" && cfg.HistoryRetention > 0 {
		scheduler, err := server.schedulePrune(cfg.PruneSchedule, cfg.HistoryRetention)
		if err != nil {
			logger.Fatalf("Failed to schedule history pruning: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.WithFields(logrus.Fields{
			"schedule":  cfg.PruneSchedule,
			"retention": cfg.HistoryRetention.String(),
		}).Info("History pruning scheduled")
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Server starting on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
