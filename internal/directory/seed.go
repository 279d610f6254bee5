package directory

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"opsdesk_backend/platform/logger"
)

//go:embed seed/reference.yaml
var referenceYAML []byte

type seedFile struct {
	Departments []seedDepartment `yaml:"departments"`
	Models      []seedModel      `yaml:"models"`
}

type seedDepartment struct {
	Name       string        `yaml:"name"`
	Patterns   []seedPattern `yaml:"patterns"`
	Vocabulary []string      `yaml:"vocabulary"`
}

type seedPattern struct {
	ID          string `yaml:"id"`
	Pattern     string `yaml:"pattern"`
	Regex       string `yaml:"regex"`
	Description string `yaml:"description"`
}

type seedModel struct {
	Code           string       `yaml:"code"`
	Name           string       `yaml:"name"`
	UnitPriceCents int64        `yaml:"unit_price_cents"`
	Branches       []seedBranch `yaml:"branches"`
}

type seedBranch struct {
	Branch string `yaml:"branch"`
	Stock  int    `yaml:"stock"`
}

// Seed upserts the embedded reference data: department grammars, vocabularies
// and the model catalog. Idempotent; run at startup after migrations.
func Seed(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	var file seedFile
	if err := yaml.Unmarshal(referenceYAML, &file); err != nil {
		return fmt.Errorf("parse reference data: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, dept := range file.Departments {
		if err := seedDepartmentData(ctx, tx, dept); err != nil {
			return err
		}
	}
	for _, model := range file.Models {
		if err := seedModelData(ctx, tx, model); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	log.Info("reference data seeded",
		"departments", len(file.Departments),
		"models", len(file.Models),
	)
	return nil
}

func seedDepartmentData(ctx context.Context, tx pgx.Tx, dept seedDepartment) error {
	for position, pattern := range dept.Patterns {
		_, err := tx.Exec(ctx, `
			INSERT INTO department_patterns (id, department, position, pattern, regex, description)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				department = EXCLUDED.department,
				position = EXCLUDED.position,
				pattern = EXCLUDED.pattern,
				regex = EXCLUDED.regex,
				description = EXCLUDED.description`,
			pattern.ID, dept.Name, position, pattern.Pattern, pattern.Regex, pattern.Description,
		)
		if err != nil {
			return fmt.Errorf("seed pattern %s: %w", pattern.ID, err)
		}
	}

	for _, phrase := range dept.Vocabulary {
		_, err := tx.Exec(ctx, `
			INSERT INTO department_vocabulary (department, phrase)
			VALUES ($1, $2)
			ON CONFLICT (department, phrase) DO NOTHING`,
			dept.Name, phrase,
		)
		if err != nil {
			return fmt.Errorf("seed vocabulary for %s: %w", dept.Name, err)
		}
	}
	return nil
}

func seedModelData(ctx context.Context, tx pgx.Tx, model seedModel) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO catalog_models (model_code, model_name, unit_price_cents)
		VALUES ($1, $2, $3)
		ON CONFLICT (model_code) DO UPDATE SET
			model_name = EXCLUDED.model_name,
			unit_price_cents = EXCLUDED.unit_price_cents`,
		model.Code, model.Name, model.UnitPriceCents,
	)
	if err != nil {
		return fmt.Errorf("seed model %s: %w", model.Code, err)
	}

	for _, branch := range model.Branches {
		_, err := tx.Exec(ctx, `
			INSERT INTO catalog_branch_stock (model_code, branch, stock)
			VALUES ($1, $2, $3)
			ON CONFLICT (model_code, branch) DO UPDATE SET stock = EXCLUDED.stock`,
			model.Code, branch.Branch, branch.Stock,
		)
		if err != nil {
			return fmt.Errorf("seed branch stock %s/%s: %w", model.Code, branch.Branch, err)
		}
	}
	return nil
}
