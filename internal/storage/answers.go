package storage

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/dpshade/pocket-madlibs/internal/errors"
	"github.com/dpshade/pocket-madlibs/internal/models"
)

// KeyPrefix namespaces answer records inside the shared key/value space.
const KeyPrefix = "madlib_"

// AnswerStore saves and loads answer sets keyed by template id. Storage
// failures are logged and swallowed: a failed write leaves the previous
// record in place and a failed read looks like "not played yet".
type AnswerStore struct {
	kv     KV
	logger *zap.Logger
}

// NewAnswerStore wraps a key/value backend
func NewAnswerStore(kv KV, logger *zap.Logger) *AnswerStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerStore{kv: kv, logger: logger.Named("answers")}
}

// Key returns the record key for a template id.
func Key(templateID string) string {
	return KeyPrefix + templateID
}

// Save writes the answers for templateID, replacing any earlier record
func (s *AnswerStore) Save(templateID string, answers models.AnswerSet) {
	data, err := json.Marshal(answers)
	if err != nil {
		s.logFailure("save", templateID, err)
		return
	}
	if err := s.kv.Set(Key(templateID), string(data)); err != nil {
		s.logFailure("save", templateID, err)
		return
	}
	s.logger.Debug("answers saved", zap.String("template_id", templateID))
}

// Load returns the saved answers for templateID. found is false when no
// record exists or the stored data cannot be read.
func (s *AnswerStore) Load(templateID string) (answers models.AnswerSet, found bool) {
	raw, ok, err := s.kv.Get(Key(templateID))
	if err != nil {
		s.logFailure("load", templateID, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	if err := json.Unmarshal([]byte(raw), &answers); err != nil {
		s.logFailure("parse", templateID, apperrors.Wrap(err, apperrors.ErrCodeFileCorrupted, "stored answers are not valid JSON"))
		return nil, false
	}
	// "null" decodes to a nil map; treat it like a missing record
	if answers == nil {
		return nil, false
	}
	return answers, true
}

// Delete removes the record for templateID; a missing record is not an error
func (s *AnswerStore) Delete(templateID string) {
	if err := s.kv.Delete(Key(templateID)); err != nil {
		s.logFailure("delete", templateID, err)
		return
	}
	s.logger.Debug("answers deleted", zap.String("template_id", templateID))
}

// Exists reports whether Load would find a record.
func (s *AnswerStore) Exists(templateID string) bool {
	_, found := s.Load(templateID)
	return found
}

// SavedIDs lists the template ids that have a record. ok is false when the
// backend cannot enumerate keys or the listing failed; callers then fall
// back to Exists per id.
func (s *AnswerStore) SavedIDs() (ids []string, ok bool) {
	lister, ok := s.kv.(Lister)
	if !ok {
		return nil, false
	}
	keys, err := lister.Keys(KeyPrefix)
	if err != nil {
		s.logFailure("list", "", err)
		return nil, false
	}
	ids = make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, KeyPrefix))
	}
	return ids, true
}

func (s *AnswerStore) logFailure(op, templateID string, err error) {
	appErr := apperrors.StorageError(op, err).WithContext("template_id", templateID)
	s.logger.Error(appErr.Message,
		zap.String("code", string(appErr.Code)),
		zap.String("template_id", templateID),
		zap.Error(err))
}
