// Package tablestore persists bookings, blocked dates and admins in a single Azure Storage
// table. Each entity type lives in its own partition; booking references are reserved in a
// REFERENCE partition so that a duplicate reference fails the insert.
package tablestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"go.uber.org/zap"
)

// Partition keys.
const (
	PartitionBooking   = "BOOKING"
	PartitionBlocked   = "BLOCKED"
	PartitionAdmin     = "ADMIN"
	PartitionReference = "REFERENCE"
)

// DefaultTableName is used when no table name is configured.
const DefaultTableName = "pyrecrest"

// Store wraps the table client shared by the repositories.
type Store struct {
	client *aztables.Client
	logger *zap.Logger
}

// Open connects to the table named tableName, creating it if absent.
func Open(ctx context.Context, connectionString, tableName string, logger *zap.Logger) (*Store, error) {
	if connectionString == "" {
		return nil, errors.New("azure storage connection string is required")
	}
	if tableName == "" {
		tableName = DefaultTableName
	}

	svc, err := aztables.NewServiceClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create table service client: %w", err)
	}

	if _, err := svc.CreateTable(ctx, tableName, nil); err != nil && !hasStatus(err, http.StatusConflict) {
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	logger.Info("connected to table store", zap.String("table", tableName))
	return &Store{client: svc.NewClient(tableName), logger: logger}, nil
}

// Ping issues a one-row query to check the table is reachable.
func (s *Store) Ping(ctx context.Context) error {
	top := int32(1)
	filter := partitionFilter(PartitionAdmin)
	pager := s.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter, Top: &top})
	_, err := pager.NextPage(ctx)
	return err
}

// Bookings returns the booking repository.
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{client: s.client} }

// BlockedDates returns the blocked date repository.
func (s *Store) BlockedDates() *BlockedDateRepository {
	return &BlockedDateRepository{client: s.client}
}

// Admins returns the admin repository.
func (s *Store) Admins() *AdminRepository { return &AdminRepository{client: s.client} }

// keys addresses a row. The service manages Timestamp itself, so it is not written.
type keys struct {
	PartitionKey string `json:"PartitionKey"`
	RowKey       string `json:"RowKey"`
}

// query runs filter and hands each raw entity to fn.
func query(ctx context.Context, client *aztables.Client, filter string, fn func([]byte) error) error {
	pager := client.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, raw := range page.Entities {
			if err := fn(raw); err != nil {
				return err
			}
		}
	}
	return nil
}

func partitionFilter(partition string) string {
	return "PartitionKey eq " + quote(partition)
}

// quote renders s as an OData string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func hasStatus(err error, status int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}
