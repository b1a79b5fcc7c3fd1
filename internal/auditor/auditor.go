package auditor

import (
	"runtime"
	"sync"

	"data-audit/internal/model"

	"go.uber.org/zap"
)

// Thresholds parameterize the default rule battery.
type Thresholds struct {
	MaxTextLength     int     `yaml:"max_text_length"`
	NumericMax        float64 `yaml:"numeric_max"`
	NumericMin        float64 `yaml:"numeric_min"`
	MaxHoldingDays    int     `yaml:"max_holding_days"`
	SpecialCharacters string  `yaml:"special_characters"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxTextLength:     50,
		NumericMax:        99999999,
		NumericMin:        0,
		MaxHoldingDays:    365,
		SpecialCharacters: DefaultSpecialCharacters,
	}
}

// DefaultRules is the fixed battery, in report order.
func DefaultRules(th Thresholds) []model.Rule {
	return []model.Rule{
		TextRule(th),
		NumericRule(th),
		VolumeContractRule(),
		InvertedIntervalRule(),
		HoldingPeriodRule(th.MaxHoldingDays),
		&MissingRule{},
		&DuplicateRule{},
	}
}

type Auditor struct {
	rules     []model.Rule
	cross     model.CrossTableRule
	normalize []string
	workers   int
	logger    *zap.Logger
}

// NewAuditor creates an auditor with no rules registered. cross may be nil.
// workers <= 0 means one worker per CPU.
func NewAuditor(cross model.CrossTableRule, workers int) *Auditor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Auditor{
		rules:     make([]model.Rule, 0),
		cross:     cross,
		normalize: []string{OpenTimeColumn, CloseTimeColumn},
		workers:   workers,
		logger:    zap.L().Named("auditor"),
	}
}

func (a *Auditor) Register(rules ...model.Rule) {
	a.rules = append(a.rules, rules...)
}

// NormalizeColumns sets the columns re-typed as timestamps before the rules
// run. Normalization only applies when all of them are present.
func (a *Auditor) NormalizeColumns(cols ...string) {
	a.normalize = cols
}

// Audit runs the cross-table rule and every registered rule on every table.
// Tables are audited concurrently; the report does not depend on scheduling.
func (a *Auditor) Audit(ds model.Dataset) (*model.Report, error) {
	names := ds.Names()
	results := make([]TableResult, len(names))

	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, t *model.Table) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = a.AuditTable(t)
		}(i, ds[name])
	}
	wg.Wait()

	var unmatched model.RowSet
	var msg string
	if a.cross != nil {
		unmatched, msg = a.cross.Check(ds)
		a.logger.Debug("Cross-table rule finished",
			zap.String("rule", a.cross.Name()),
			zap.Int("unmatched", unmatched.Len()))
	}

	return Aggregate(results, unmatched, msg), nil
}

// AuditTable normalizes the table and runs the rules in registration order.
// A failing rule is logged and skipped.
func (a *Auditor) AuditTable(t *model.Table) TableResult {
	t = NormalizeTimestamps(t, a.normalize...)
	res := TableResult{Table: t.Name, Columns: t.Columns}

	for _, rule := range a.rules {
		findings, err := rule.Check(t)
		if err != nil {
			a.logger.Warn("Error running rule",
				zap.String("rule", rule.Name()),
				zap.String("table", t.Name),
				zap.Error(err))
			continue
		}
		if len(findings) > 0 {
			res.Findings = append(res.Findings, findings...)
		}
	}

	a.logger.Debug("Table audited",
		zap.String("table", t.Name),
		zap.Int("rows", len(t.Rows)),
		zap.Int("findings", len(res.Findings)))
	return res
}
