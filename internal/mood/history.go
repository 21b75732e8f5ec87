package mood

import "context"

// GetHistory returns the most recent recorded operations, newest first.
func (s *Service) GetHistory(ctx context.Context, limit int) ([]*Operation, error) {
	ops, err := s.database.ListOperations(ctx, limit)
	if err != nil {
		return nil, storageErr("listing operations", err)
	}
	return ops, nil
}
