package store

import (
	"fmt"
	"strconv"

	"flamewars/internal/models"
)

// EncodeComment builds the row for a freshly created comment. The state
// flags and revision are always written so later conditional updates have
// a stable precondition to check against.
func EncodeComment(r *models.CommentRecord) Item {
	key := CommentKey(r.PageURL, r.ID)
	it := Item{
		AttrPK:        S(key.PK),
		AttrSK:        S(key.SK),
		AttrKind:      S(string(KindComment)),
		AttrPageURL:   S(r.PageURL),
		AttrText:      S(r.Text),
		AttrParent:    S(ParentRef(r.ParentID)),
		AttrTimestamp: S(r.Timestamp),
		AttrAuthor:    S(r.Author.Name),
		AttrUserID:    S(r.Author.ID),
		AttrIsDeleted: Bool(r.IsDeleted),
		AttrIsEdited:  Bool(r.IsEdited),
		AttrRevision:  N(r.Revision),
	}
	if r.EditedAt != "" {
		it[AttrEditedAt] = S(r.EditedAt)
	}
	if r.DeletedAt != "" {
		it[AttrDeletedAt] = S(r.DeletedAt)
	}
	return it
}

// DecodeComment maps a comment row back to a record. Missing optional
// attributes mean "not edited" / "not deleted".
func DecodeComment(it Item) (*models.CommentRecord, error) {
	if k, err := DecodeKind(it); err != nil {
		return nil, err
	} else if k != KindComment {
		return nil, fmt.Errorf("decode comment: row kind is %q", k)
	}

	sk, err := requiredString(it, AttrSK)
	if err != nil {
		return nil, err
	}
	id, ok := ParseCommentKey(sk)
	if !ok {
		return nil, fmt.Errorf("decode comment: bad sort key %q", sk)
	}

	r := &models.CommentRecord{ID: id}
	if r.PageURL, err = requiredString(it, AttrPageURL); err != nil {
		return nil, err
	}
	if r.Text, err = requiredString(it, AttrText); err != nil {
		return nil, err
	}
	if r.Timestamp, err = requiredString(it, AttrTimestamp); err != nil {
		return nil, err
	}
	if r.Author.ID, err = requiredString(it, AttrUserID); err != nil {
		return nil, err
	}
	if r.Author.Name, err = optionalString(it, AttrAuthor); err != nil {
		return nil, err
	}

	parent, err := optionalString(it, AttrParent)
	if err != nil {
		return nil, err
	}
	// an unparsable parent reference is treated like a dangling one
	r.ParentID, _ = ParseCommentKey(parent)

	if r.EditedAt, err = optionalString(it, AttrEditedAt); err != nil {
		return nil, err
	}
	if r.DeletedAt, err = optionalString(it, AttrDeletedAt); err != nil {
		return nil, err
	}
	if r.IsEdited, err = optionalBool(it, AttrIsEdited); err != nil {
		return nil, err
	}
	if r.IsDeleted, err = optionalBool(it, AttrIsDeleted); err != nil {
		return nil, err
	}
	if r.Revision, err = optionalNumber(it, AttrRevision); err != nil {
		return nil, err
	}
	return r, nil
}

func EncodePage(p *models.Page) Item {
	key := PageKey(p.URL)
	return Item{
		AttrPK:        S(key.PK),
		AttrSK:        S(key.SK),
		AttrKind:      S(string(KindPage)),
		AttrPageURL:   S(p.URL),
		AttrCreatedAt: S(p.CreatedAt),
	}
}

func DecodePage(it Item) (*models.Page, error) {
	if k, err := DecodeKind(it); err != nil {
		return nil, err
	} else if k != KindPage {
		return nil, fmt.Errorf("decode page: row kind is %q", k)
	}
	p := &models.Page{}
	var err error
	if p.URL, err = requiredString(it, AttrPageURL); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = optionalString(it, AttrCreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// DecodeKind reads the explicit row discriminator.
func DecodeKind(it Item) (Kind, error) {
	s, err := requiredString(it, AttrKind)
	if err != nil {
		return "", err
	}
	switch k := Kind(s); k {
	case KindPage, KindComment:
		return k, nil
	default:
		return "", fmt.Errorf("unknown row kind %q", s)
	}
}

func requiredString(it Item, attr string) (string, error) {
	v, ok := it[attr]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", attr)
	}
	if v.S == nil {
		return "", fmt.Errorf("attribute %q is not a string", attr)
	}
	return *v.S, nil
}

func optionalString(it Item, attr string) (string, error) {
	v, ok := it[attr]
	if !ok {
		return "", nil
	}
	if v.S == nil {
		return "", fmt.Errorf("attribute %q is not a string", attr)
	}
	return *v.S, nil
}

func optionalBool(it Item, attr string) (bool, error) {
	v, ok := it[attr]
	if !ok {
		return false, nil
	}
	if v.BOOL == nil {
		return false, fmt.Errorf("attribute %q is not a boolean", attr)
	}
	return *v.BOOL, nil
}

func optionalNumber(it Item, attr string) (int64, error) {
	v, ok := it[attr]
	if !ok {
		return 0, nil
	}
	if v.N == nil {
		return 0, fmt.Errorf("attribute %q is not a number", attr)
	}
	n, err := strconv.ParseInt(*v.N, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", attr, err)
	}
	return n, nil
}
