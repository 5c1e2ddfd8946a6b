package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type TestDatabaseContainer struct {
	Container        *postgres.PostgresContainer
	ConnectionString string
}

// ExecuteFile will execute a *.sql file for a database container.
// Sql files for testing purposes should be under a package's 'testdata' directory.
func (td *TestDatabaseContainer) ExecuteFile(path string) (int64, error) {
	ctx := context.Background()

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("failed to open file: %w", err)
	}

	conn, err := td.NewPgxConnection()
	if err != nil {
		return 0, fmt.Errorf("failed to connect to container database: %w", err)
	}
	defer conn.Close(ctx)

	result, err := conn.Exec(ctx, string(content))
	if err != nil {
		return 0, fmt.Errorf("failed to execute sql: %w", err)
	}

	return result.RowsAffected(), nil
}

// CreateSnapshot will create a snapshot for a given name. Close any active connections to the database
// before taking a snapshot.
func (td *TestDatabaseContainer) CreateSnapshot(name string) error {
	return td.Container.Snapshot(context.Background(), postgres.WithSnapshotName(name))
}

// RestoreSnapshot will restore the snapshot taken after the database container
// had the initial migrations and data seed applied. "Base" restores the
// database to its init state.
func (td *TestDatabaseContainer) RestoreSnapshot(name string) error {
	return td.Container.Restore(context.Background(), postgres.WithSnapshotName(name))
}

// Return a pgx connection for a given database container.
func (td *TestDatabaseContainer) NewPgxConnection() (*pgx.Conn, error) {
	return pgx.Connect(context.Background(), td.ConnectionString)
}

// Return a sql/db connection for a given database container.
func (td *TestDatabaseContainer) NewSqlDbConnection() (*sql.DB, error) {
	return sql.Open("pgx", td.ConnectionString+"sslmode=disable")
}

// Return a pgx pool for a given database container.
func (td *TestDatabaseContainer) NewPgxPoolConnection() (*pgxpool.Pool, error) {
	return pgxpool.New(context.Background(), td.ConnectionString)
}

// runMigrations runs the production migrations so there is no drift between
// prod and local development.
func (td *TestDatabaseContainer) runMigrations() error {
	migrationsDir, err := findDir(filepath.Join("db", "migrations", "regsearch"))
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+migrationsDir, td.ConnectionString+"sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// initSeed applies the baseline registry data to the freshly migrated
// database. For test or scenario specific data, use ExecuteFile.
func (td *TestDatabaseContainer) initSeed() error {
	seedDir, err := findDir(filepath.Join("db", "testdata"))
	if err != nil {
		return err
	}

	rowsAffected, err := td.ExecuteFile(filepath.Join(seedDir, "insert_registrations.sql"))
	if err != nil {
		return fmt.Errorf("failed to seed database container: %w", err)
	}
	if rowsAffected == 0 {
		return errors.New("failed to seed init data; zero affected rows")
	}
	return nil
}

// NewTestDatabaseContainer returns a postgres container with the migrations
// from db/migrations/regsearch applied and the seed data from db/testdata
// loaded, snapshotted as "Base".
func NewTestDatabaseContainer() (TestDatabaseContainer, error) {
	ctx := context.Background()
	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("regsearch"),
		postgres.WithUsername("toor"),
		postgres.WithPassword("foobar"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return TestDatabaseContainer{}, fmt.Errorf("failed to create database container: %w", err)
	}

	conn, err := c.ConnectionString(ctx)
	if err != nil {
		return TestDatabaseContainer{}, fmt.Errorf("failed to get connection string for container database: %w", err)
	}

	tdc := TestDatabaseContainer{
		Container:        c,
		ConnectionString: conn,
	}

	if err := tdc.runMigrations(); err != nil {
		return TestDatabaseContainer{}, err
	}
	if err := tdc.initSeed(); err != nil {
		return TestDatabaseContainer{}, err
	}
	if err := tdc.CreateSnapshot("Base"); err != nil {
		return TestDatabaseContainer{}, err
	}

	return tdc, nil
}

// findDir walks up from the working directory until the relative path exists,
// so helpers work no matter which package's tests call them.
func findDir(relative string) (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		targetPath := filepath.Join(currentDir, relative)
		if _, err := os.Stat(targetPath); err == nil {
			return targetPath, nil
		}

		parent := filepath.Dir(currentDir)
		if parent == currentDir {
			return "", fmt.Errorf("directory %s not found in any parent of the working directory", relative)
		}
		currentDir = parent
	}
}
