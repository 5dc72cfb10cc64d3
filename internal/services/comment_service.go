package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"flamewars/internal/metrics"
	"flamewars/internal/models"
	"flamewars/internal/store"
	"flamewars/internal/utils"
)

// TimestampLayout is fixed width so lexical order equals time order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Options struct {
	BaseURL          string
	MaxCommentLength int
	MaxFieldLength   int
	MaxCountURLs     int

	Now   func() time.Time
	NewID func() string
}

// CommentService 评论读写的核心，所有请求无状态，存储是唯一的同步点
type CommentService struct {
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	opts    Options
}

func NewCommentService(s store.Store, logger *zap.Logger, m *metrics.Metrics, opts Options) *CommentService {
	if opts.MaxCommentLength <= 0 {
		opts.MaxCommentLength = 5000
	}
	if opts.MaxFieldLength <= 0 {
		opts.MaxFieldLength = 100
	}
	if opts.MaxCountURLs <= 0 {
		opts.MaxCountURLs = 50
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.NewString() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{
		store:   s,
		logger:  logger.Named("comments"),
		metrics: m,
		opts:    opts,
	}
}

// AddInput is a validated-on-entry add request.
type AddInput struct {
	PageURL   string
	Text      string
	InReplyTo string
}

// List returns the materialized reply forest of a page. When render is
// set every live comment also carries sanitized HTML.
func (s *CommentService) List(ctx context.Context, rawURL string, render bool) ([]*models.Comment, error) {
	pageURL, err := normalizePage(rawURL)
	if err != nil {
		return nil, err
	}

	records, err := s.loadRecords(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	forest := BuildThread(records)
	if render {
		renderForest(forest)
	}
	return forest, nil
}

func (s *CommentService) loadRecords(ctx context.Context, pageURL string) ([]*models.CommentRecord, error) {
	partition := store.PartitionKey(pageURL)
	items, err := s.store.Query(ctx, partition)
	if err != nil {
		return nil, s.storeFailure("query", partition, err)
	}

	records := make([]*models.CommentRecord, 0, len(items))
	for _, it := range items {
		kind, err := store.DecodeKind(it)
		if err != nil {
			s.logger.Warn("skipping row without kind", zap.String("partition", partition), zap.Error(err))
			continue
		}
		if kind != store.KindComment {
			continue
		}
		rec, err := store.DecodeComment(it)
		if err != nil {
			s.logger.Warn("skipping undecodable comment row", zap.String("partition", partition), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// ValidateAdd checks an add request without touching identity or the
// store, and returns the normalized page url.
func (s *CommentService) ValidateAdd(in AddInput) (string, error) {
	if err := s.validateText(in.Text); err != nil {
		return "", err
	}
	if utf8.RuneCountInString(in.InReplyTo) > s.opts.MaxFieldLength {
		return "", validationError("inReplyTo too long")
	}
	return normalizePage(in.PageURL)
}

func (s *CommentService) validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return validationError("comment is empty")
	}
	if utf8.RuneCountInString(text) > s.opts.MaxCommentLength {
		return validationError(fmt.Sprintf("comment longer than %d characters", s.opts.MaxCommentLength))
	}
	return nil
}

// Add inserts a new comment for caller and returns it with its location.
func (s *CommentService) Add(ctx context.Context, caller models.Author, in AddInput) (c *models.Comment, location string, err error) {
	defer func() { s.metrics.Mutation("add", outcome(err)) }()

	pageURL, err := s.ValidateAdd(in)
	if err != nil {
		return nil, "", err
	}
	if caller.ID == "" {
		return nil, "", authenticationError("Authentication required", nil)
	}

	now := s.now()
	rec := &models.CommentRecord{
		ID:        s.opts.NewID(),
		PageURL:   pageURL,
		ParentID:  in.InReplyTo,
		Text:      in.Text,
		Author:    caller,
		Timestamp: now,
	}

	if err := s.ensurePage(ctx, pageURL, now); err != nil {
		return nil, "", err
	}

	err = s.store.PutItem(ctx, store.EncodeComment(rec), true)
	if errors.Is(err, store.ErrConditionFailed) {
		return nil, "", conflictError("comment id already taken")
	}
	if err != nil {
		return nil, "", s.storeFailure("put", store.PartitionKey(pageURL), err)
	}

	c = &models.Comment{
		ID:        rec.ID,
		Author:    rec.Author,
		Text:      rec.Text,
		Timestamp: rec.Timestamp,
		IsEdited:  false,
		Replies:   []*models.Comment{},
	}
	location = fmt.Sprintf("%s/%s/%s", s.opts.BaseURL, url.PathEscape(pageURL), rec.ID)
	return c, location, nil
}

// ensurePage writes the page row the first time a page gets a comment.
func (s *CommentService) ensurePage(ctx context.Context, pageURL, now string) error {
	err := s.store.PutItem(ctx, store.EncodePage(&models.Page{URL: pageURL, CreatedAt: now}), true)
	if err == nil || errors.Is(err, store.ErrConditionFailed) {
		return nil
	}
	return s.storeFailure("put", store.PartitionKey(pageURL), err)
}

// Edit replaces the text of caller's comment. revision, when given, must
// match the stored revision.
func (s *CommentService) Edit(ctx context.Context, caller models.Author, rawURL, commentID, text string, revision *int64) (err error) {
	defer func() { s.metrics.Mutation("edit", outcome(err)) }()

	if err := s.validateText(text); err != nil {
		return err
	}
	key, err := commentKey(rawURL, commentID)
	if err != nil {
		return err
	}
	if caller.ID == "" {
		return authenticationError("Authentication required", nil)
	}

	it, err := s.store.GetItem(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return authorizationError()
	}
	if err != nil {
		return s.storeFailure("get", key.PK, err)
	}
	rec, err := store.DecodeComment(it)
	if err != nil {
		return s.storeFailure("decode", key.PK, err)
	}
	if !CanMutate(caller.ID, rec) || rec.Tombstoned() {
		return authorizationError()
	}

	cond := OwnerCondition(caller.ID)
	seen := rec.Revision
	if revision != nil {
		seen = *revision
		cond = cond.And(store.Equals(store.AttrRevision, store.N(seen)))
	} else if _, ok := it[store.AttrRevision]; ok {
		cond = cond.And(store.Equals(store.AttrRevision, store.N(seen)))
	} else {
		cond = cond.And(store.NotExists(store.AttrRevision))
	}

	set := store.Item{
		store.AttrText:     store.S(text),
		store.AttrEditedAt: store.S(s.now()),
		store.AttrIsEdited: store.Bool(true),
		store.AttrRevision: store.N(seen + 1),
	}
	err = s.store.UpdateItem(ctx, key, set, cond)
	if errors.Is(err, store.ErrConditionFailed) {
		return s.diagnoseEdit(ctx, key, caller.ID)
	}
	if err != nil {
		return s.storeFailure("update", key.PK, err)
	}
	return nil
}

// diagnoseEdit tells a lost race apart from a lost right to edit.
func (s *CommentService) diagnoseEdit(ctx context.Context, key store.Key, callerID string) error {
	it, err := s.store.GetItem(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("re-read after failed edit", zap.String("partition", key.PK), zap.Error(err))
		}
		return authorizationError()
	}
	rec, err := store.DecodeComment(it)
	if err != nil || !CanMutate(callerID, rec) || rec.Tombstoned() {
		return authorizationError()
	}
	return conflictError("comment was modified concurrently")
}

// Delete tombstones caller's comment. Not owning the comment and the
// comment being deleted already are reported the same way.
func (s *CommentService) Delete(ctx context.Context, caller models.Author, rawURL, commentID string) (err error) {
	defer func() { s.metrics.Mutation("delete", outcome(err)) }()

	key, err := commentKey(rawURL, commentID)
	if err != nil {
		return err
	}
	if caller.ID == "" {
		return authenticationError("Authentication required", nil)
	}

	set := store.Item{
		store.AttrDeletedAt: store.S(s.now()),
		store.AttrIsDeleted: store.Bool(true),
	}
	err = s.store.UpdateItem(ctx, key, set, OwnerCondition(caller.ID))
	if errors.Is(err, store.ErrConditionFailed) {
		return authorizationError()
	}
	if err != nil {
		return s.storeFailure("update", key.PK, err)
	}
	return nil
}

func (s *CommentService) now() string {
	return s.opts.Now().UTC().Format(TimestampLayout)
}

// storeFailure logs the backend error and hides it from callers.
func (s *CommentService) storeFailure(op, partition string, err error) error {
	if errors.Is(err, context.Canceled) {
		s.logger.Info("store call canceled", zap.String("op", op), zap.String("partition", partition))
	} else {
		s.logger.Error("store call failed", zap.String("op", op), zap.String("partition", partition), zap.Error(err))
	}
	return storeError(err)
}

func normalizePage(rawURL string) (string, error) {
	pageURL, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return "", validationError("invalid page url")
	}
	return pageURL, nil
}

func commentKey(rawURL, commentID string) (store.Key, error) {
	pageURL, err := normalizePage(rawURL)
	if err != nil {
		return store.Key{}, err
	}
	if strings.TrimSpace(commentID) == "" {
		return store.Key{}, validationError("comment id required")
	}
	return store.CommentKey(pageURL, commentID), nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return KindOf(err).String()
}

func renderForest(forest []*models.Comment) {
	for _, c := range forest {
		if !c.IsTombstone() {
			c.HTML = utils.RenderMarkdown(c.Text)
		}
		renderForest(c.Replies)
	}
}
