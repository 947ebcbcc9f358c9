package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/quillforge/continuum-backend/internal/cache"
	"github.com/quillforge/continuum-backend/internal/models"
	"github.com/quillforge/continuum-backend/internal/repository"
	"gorm.io/gorm"
)

// The mocks below are in-memory implementations of the repository
// interfaces. They share state through mockWorld so joined queries
// (owed rows, unread candidates) see the same data the simple CRUD
// mocks write.

type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User), nextID: 1}
}

func (m *MockUserRepository) Create(user *models.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) Update(user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) SetShowHiatusedOwed(userID uint, show bool) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.ShowHiatusedOwed = show
	return nil
}

type MockReplyRepository struct {
	replies map[uint]*models.Reply
	nextID  uint
}

func NewMockReplyRepository() *MockReplyRepository {
	return &MockReplyRepository{replies: make(map[uint]*models.Reply), nextID: 1}
}

func (m *MockReplyRepository) live(postID uint) []*models.Reply {
	var out []*models.Reply
	for _, r := range m.replies {
		if r.PostID == postID && !r.DeletedAt.Valid {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReplyOrder < out[j].ReplyOrder })
	return out
}

func (m *MockReplyRepository) Create(reply *models.Reply) error {
	if reply.ID == 0 {
		reply.ID = m.nextID
		m.nextID++
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now()
	}
	m.replies[reply.ID] = reply
	return nil
}

func (m *MockReplyRepository) Update(reply *models.Reply) error {
	m.replies[reply.ID] = reply
	return nil
}

func (m *MockReplyRepository) FindByID(id uint) (*models.Reply, error) {
	if r, ok := m.replies[id]; ok && !r.DeletedAt.Valid {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockReplyRepository) FindByIDUnscoped(id uint) (*models.Reply, error) {
	if r, ok := m.replies[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockReplyRepository) ListByPost(postID uint) ([]models.Reply, error) {
	var out []models.Reply
	for _, r := range m.live(postID) {
		out = append(out, *r)
	}
	return out, nil
}

func (m *MockReplyRepository) CountActive(postID uint) (int64, error) {
	return int64(len(m.live(postID))), nil
}

func (m *MockReplyRepository) CountByUser(postID, userID uint) (int64, error) {
	var count int64
	for _, r := range m.live(postID) {
		if r.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockReplyRepository) FindFirstAfter(postID uint, after time.Time) (*models.Reply, error) {
	for _, r := range m.live(postID) {
		if r.CreatedAt.After(after) {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockReplyRepository) FindNewest(postID uint) (*models.Reply, error) {
	var newest *models.Reply
	for _, r := range m.live(postID) {
		if newest == nil || r.CreatedAt.After(newest.CreatedAt) {
			newest = r
		}
	}
	if newest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return newest, nil
}

func (m *MockReplyRepository) SoftDelete(id uint) error {
	r, ok := m.replies[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (m *MockReplyRepository) Restore(id uint) error {
	r, ok := m.replies[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.DeletedAt = gorm.DeletedAt{}
	return nil
}

func (m *MockReplyRepository) CloseOrderGap(postID uint, fromOrder int) error {
	for _, r := range m.replies {
		if r.PostID == postID && !r.DeletedAt.Valid && r.ReplyOrder > fromOrder {
			r.ReplyOrder--
		}
	}
	return nil
}

func (m *MockReplyRepository) ReorderByCreatedAt(postID uint) error {
	live := m.live(postID)
	sort.Slice(live, func(i, j int) bool { return live[i].CreatedAt.Before(live[j].CreatedAt) })
	for i, r := range live {
		r.ReplyOrder = i
	}
	return nil
}

type MockReadMarkerRepository struct {
	markers map[string]*models.ReadMarker
	nextID  uint
}

func NewMockReadMarkerRepository() *MockReadMarkerRepository {
	return &MockReadMarkerRepository{markers: make(map[string]*models.ReadMarker), nextID: 1}
}

func markerKey(userID, targetID uint, kind models.TargetKind) string {
	return fmt.Sprintf("%d:%d:%s", userID, targetID, kind)
}

func (m *MockReadMarkerRepository) getOrCreate(userID, targetID uint, kind models.TargetKind) *models.ReadMarker {
	key := markerKey(userID, targetID, kind)
	if mk, ok := m.markers[key]; ok {
		return mk
	}
	mk := &models.ReadMarker{
		ID:         m.nextID,
		UserID:     userID,
		TargetID:   targetID,
		TargetKind: kind,
	}
	m.nextID++
	m.markers[key] = mk
	return mk
}

func (m *MockReadMarkerRepository) UpsertRead(userID, targetID uint, kind models.TargetKind, readAt time.Time, force bool) error {
	mk := m.getOrCreate(userID, targetID, kind)
	if force || mk.ReadAt == nil || readAt.After(*mk.ReadAt) {
		mk.ReadAt = &readAt
	}
	return nil
}

func (m *MockReadMarkerRepository) SetIgnored(userID, targetID uint, kind models.TargetKind, ignored bool) error {
	m.getOrCreate(userID, targetID, kind).Ignored = ignored
	return nil
}

func (m *MockReadMarkerRepository) SetWarningsHidden(userID, targetID uint, kind models.TargetKind, hidden bool) error {
	m.getOrCreate(userID, targetID, kind).WarningsHidden = hidden
	return nil
}

func (m *MockReadMarkerRepository) ResetWarningsHidden(postID uint) error {
	for _, mk := range m.markers {
		if mk.TargetID == postID && mk.TargetKind == models.TargetPost {
			mk.WarningsHidden = false
		}
	}
	return nil
}

func (m *MockReadMarkerRepository) Find(userID, targetID uint, kind models.TargetKind) (*models.ReadMarker, error) {
	if mk, ok := m.markers[markerKey(userID, targetID, kind)]; ok {
		return mk, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockReadMarkerRepository) FindPair(userID, postID, continuityID uint) (*models.ReadMarker, *models.ReadMarker, error) {
	post := m.markers[markerKey(userID, postID, models.TargetPost)]
	continuity := m.markers[markerKey(userID, continuityID, models.TargetContinuity)]
	return post, continuity, nil
}

type MockPostRepository struct {
	posts    map[uint]*models.Post
	warnings map[uint]map[string]bool
	replies  *MockReplyRepository
	markers  *MockReadMarkerRepository
	authors  *MockPostAuthorRepository // set after construction, the types are mutually dependent
	nextID   uint
}

func NewMockPostRepository(replies *MockReplyRepository, markers *MockReadMarkerRepository) *MockPostRepository {
	return &MockPostRepository{
		posts:    make(map[uint]*models.Post),
		warnings: make(map[uint]map[string]bool),
		replies:  replies,
		markers:  markers,
		nextID:   1,
	}
}

func (m *MockPostRepository) Create(post *models.Post) error {
	if post.ID == 0 {
		post.ID = m.nextID
		m.nextID++
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	m.posts[post.ID] = post
	return nil
}

func (m *MockPostRepository) FindByID(id uint) (*models.Post, error) {
	if p, ok := m.posts[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPostRepository) UpdateTaggedAt(postID uint, taggedAt time.Time) error {
	p, ok := m.posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.TaggedAt = taggedAt
	return nil
}

func (m *MockPostRepository) SetStatus(postID uint, status models.PostStatus, editedAt time.Time) error {
	p, ok := m.posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	p.EditedAt = editedAt
	return nil
}

func (m *MockPostRepository) SetPrivacy(postID uint, privacy models.PrivacyLevel) error {
	p, ok := m.posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Privacy = privacy
	return nil
}

func (m *MockPostRepository) SetAuthorsLocked(postID uint, locked bool) error {
	p, ok := m.posts[postID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.AuthorsLocked = locked
	return nil
}

func (m *MockPostRepository) AddWarning(postID uint, label string) (bool, error) {
	if m.warnings[postID] == nil {
		m.warnings[postID] = make(map[string]bool)
	}
	if m.warnings[postID][label] {
		return false, nil
	}
	m.warnings[postID][label] = true
	return true, nil
}

func (m *MockPostRepository) ListWarnings(postID uint) ([]models.ContentWarning, error) {
	var out []models.ContentWarning
	for label := range m.warnings[postID] {
		out = append(out, models.ContentWarning{PostID: postID, Label: label})
	}
	return out, nil
}

func (m *MockPostRepository) ListUnreadCandidates(userID uint, openedOnly bool, limit int) ([]repository.UnreadCandidateRow, error) {
	var posts []*models.Post
	for _, p := range m.posts {
		if !p.DeletedAt.Valid {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].TaggedAt.After(posts[j].TaggedAt) })

	var rows []repository.UnreadCandidateRow
	for _, p := range posts {
		pm, _ := m.markers.Find(userID, p.ID, models.TargetPost)
		cm, _ := m.markers.Find(userID, p.ContinuityID, models.TargetContinuity)
		if pm != nil && pm.Ignored {
			continue
		}
		if cm != nil && cm.Ignored {
			continue
		}
		if openedOnly && pm == nil {
			continue
		}
		row := repository.UnreadCandidateRow{
			PostID:        p.ID,
			ContinuityID:  p.ContinuityID,
			CreatorID:     p.CreatorID,
			Subject:       p.Subject,
			Privacy:       p.Privacy,
			TaggedAt:      p.TaggedAt,
			EditedAt:      p.EditedAt,
			HasPostMarker: pm != nil,
		}
		if m.authors != nil {
			if a, err := m.authors.Find(p.ID, userID); err == nil {
				row.IsAuthor = a.Joined
			}
		}
		if pm != nil {
			row.PostReadAt = pm.ReadAt
		}
		if cm != nil {
			row.ContinuityReadAt = cm.ReadAt
		}
		rows = append(rows, row)
		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	return rows, nil
}

type MockPostAuthorRepository struct {
	authors map[string]*models.PostAuthor
	posts   *MockPostRepository
	replies *MockReplyRepository
	markers *MockReadMarkerRepository
	nextID  uint
}

func NewMockPostAuthorRepository(posts *MockPostRepository, replies *MockReplyRepository, markers *MockReadMarkerRepository) *MockPostAuthorRepository {
	return &MockPostAuthorRepository{
		authors: make(map[string]*models.PostAuthor),
		posts:   posts,
		replies: replies,
		markers: markers,
		nextID:  1,
	}
}

func authorKey(postID, userID uint) string {
	return fmt.Sprintf("%d:%d", postID, userID)
}

func (m *MockPostAuthorRepository) Find(postID, userID uint) (*models.PostAuthor, error) {
	if a, ok := m.authors[authorKey(postID, userID)]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPostAuthorRepository) Create(author *models.PostAuthor) error {
	if author.ID == 0 {
		author.ID = m.nextID
		m.nextID++
	}
	m.authors[authorKey(author.PostID, author.UserID)] = author
	return nil
}

func (m *MockPostAuthorRepository) Update(author *models.PostAuthor) error {
	m.authors[authorKey(author.PostID, author.UserID)] = author
	return nil
}

func (m *MockPostAuthorRepository) Delete(postID, userID uint) error {
	delete(m.authors, authorKey(postID, userID))
	return nil
}

func (m *MockPostAuthorRepository) ListByPost(postID uint) ([]models.PostAuthor, error) {
	var out []models.PostAuthor
	for _, a := range m.authors {
		if a.PostID == postID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *MockPostAuthorRepository) ListOwedRows(userID uint) ([]repository.OwedRow, error) {
	var rows []repository.OwedRow
	for _, a := range m.authors {
		if a.UserID != userID || !a.Joined {
			continue
		}
		post, ok := m.posts.posts[a.PostID]
		if !ok || post.DeletedAt.Valid {
			continue
		}

		lastContributor := post.CreatorID
		if newest, err := m.replies.FindNewest(post.ID); err == nil {
			lastContributor = newest.UserID
		}

		row := repository.OwedRow{
			PostID:            post.ID,
			Subject:           post.Subject,
			Status:            post.Status,
			TaggedAt:          post.TaggedAt,
			CanOwe:            a.CanOwe,
			LastContributorID: lastContributor,
		}
		if pm, err := m.markers.Find(userID, post.ID, models.TargetPost); err == nil {
			row.PostIgnored = pm.Ignored
		}
		if cm, err := m.markers.Find(userID, post.ContinuityID, models.TargetContinuity); err == nil {
			row.ContinuityIgnored = cm.Ignored
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PostID < rows[j].PostID })
	return rows, nil
}

type MockBlockRepository struct {
	blocks  map[string]*models.Block
	authors *MockPostAuthorRepository
	nextID  uint
}

func NewMockBlockRepository(authors *MockPostAuthorRepository) *MockBlockRepository {
	return &MockBlockRepository{blocks: make(map[string]*models.Block), authors: authors, nextID: 1}
}

func blockPairKey(blockingUserID, blockedUserID uint) string {
	return fmt.Sprintf("%d:%d", blockingUserID, blockedUserID)
}

func (m *MockBlockRepository) Upsert(block *models.Block) error {
	key := blockPairKey(block.BlockingUserID, block.BlockedUserID)
	if existing, ok := m.blocks[key]; ok {
		existing.HideMe = block.HideMe
		existing.HideThem = block.HideThem
		return nil
	}
	block.ID = m.nextID
	m.nextID++
	m.blocks[key] = block
	return nil
}

func (m *MockBlockRepository) Find(blockingUserID, blockedUserID uint) (*models.Block, error) {
	if b, ok := m.blocks[blockPairKey(blockingUserID, blockedUserID)]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockBlockRepository) Delete(blockingUserID, blockedUserID uint) error {
	delete(m.blocks, blockPairKey(blockingUserID, blockedUserID))
	return nil
}

func (m *MockBlockRepository) joinedAuthorPosts(match func(authorID uint) bool) []uint {
	seen := make(map[uint]bool)
	var out []uint
	for _, a := range m.authors.authors {
		if a.Joined && match(a.UserID) && !seen[a.PostID] {
			seen[a.PostID] = true
			out = append(out, a.PostID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *MockBlockRepository) ListHiddenPostIDs(userID uint) ([]uint, error) {
	return m.joinedAuthorPosts(func(authorID uint) bool {
		b, ok := m.blocks[blockPairKey(userID, authorID)]
		return ok && b.HideThem
	}), nil
}

func (m *MockBlockRepository) ListBlockedPostIDs(userID uint) ([]uint, error) {
	return m.joinedAuthorPosts(func(authorID uint) bool {
		b, ok := m.blocks[blockPairKey(authorID, userID)]
		return ok && b.HideMe
	}), nil
}

func (m *MockBlockRepository) ListAffectedUserIDs(postID uint) ([]uint, error) {
	authorSet := make(map[uint]bool)
	for _, a := range m.authors.authors {
		if a.PostID == postID {
			authorSet[a.UserID] = true
		}
	}
	seen := make(map[uint]bool)
	var out []uint
	for _, b := range m.blocks {
		if authorSet[b.BlockedUserID] && !seen[b.BlockingUserID] {
			seen[b.BlockingUserID] = true
			out = append(out, b.BlockingUserID)
		}
		if authorSet[b.BlockingUserID] && !seen[b.BlockedUserID] {
			seen[b.BlockedUserID] = true
			out = append(out, b.BlockedUserID)
		}
	}
	return out, nil
}

type MockAccessRepository struct {
	viewers     map[uint]map[uint]bool
	circles     map[uint]*models.AccessCircle
	members     map[uint]map[uint]bool
	postCircles map[uint]map[uint]bool
	posts       *MockPostRepository
	nextID      uint
}

func NewMockAccessRepository(posts *MockPostRepository) *MockAccessRepository {
	return &MockAccessRepository{
		viewers:     make(map[uint]map[uint]bool),
		circles:     make(map[uint]*models.AccessCircle),
		members:     make(map[uint]map[uint]bool),
		postCircles: make(map[uint]map[uint]bool),
		posts:       posts,
		nextID:      1,
	}
}

func (m *MockAccessRepository) ListVisiblePostIDs(userID uint) ([]uint, error) {
	var out []uint
	for postID, p := range m.posts.posts {
		if p.Privacy != models.PrivacyAccessList || p.DeletedAt.Valid {
			continue
		}
		if m.viewers[postID][userID] {
			out = append(out, postID)
			continue
		}
		for circleID := range m.postCircles[postID] {
			if m.members[circleID][userID] {
				out = append(out, postID)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *MockAccessRepository) ListViewerIDs(postID uint) ([]uint, error) {
	var out []uint
	for userID := range m.viewers[postID] {
		out = append(out, userID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *MockAccessRepository) ReplaceViewers(postID uint, userIDs []uint) error {
	set := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		set[id] = true
	}
	m.viewers[postID] = set
	return nil
}

func (m *MockAccessRepository) AddViewer(postID, userID uint) error {
	if m.viewers[postID] == nil {
		m.viewers[postID] = make(map[uint]bool)
	}
	m.viewers[postID][userID] = true
	return nil
}

func (m *MockAccessRepository) RemoveViewer(postID, userID uint) error {
	delete(m.viewers[postID], userID)
	return nil
}

func (m *MockAccessRepository) CreateCircle(circle *models.AccessCircle) error {
	if circle.ID == 0 {
		circle.ID = m.nextID
		m.nextID++
	}
	m.circles[circle.ID] = circle
	return nil
}

func (m *MockAccessRepository) FindCircle(id uint) (*models.AccessCircle, error) {
	if c, ok := m.circles[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockAccessRepository) AddCircleMember(circleID, userID uint) error {
	if m.members[circleID] == nil {
		m.members[circleID] = make(map[uint]bool)
	}
	m.members[circleID][userID] = true
	return nil
}

func (m *MockAccessRepository) RemoveCircleMember(circleID, userID uint) error {
	delete(m.members[circleID], userID)
	return nil
}

func (m *MockAccessRepository) ListCircleMemberIDs(circleID uint) ([]uint, error) {
	var out []uint
	for userID := range m.members[circleID] {
		out = append(out, userID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *MockAccessRepository) AttachCircle(postID, circleID uint) error {
	if m.postCircles[postID] == nil {
		m.postCircles[postID] = make(map[uint]bool)
	}
	m.postCircles[postID][circleID] = true
	return nil
}

func (m *MockAccessRepository) DetachCircle(postID, circleID uint) error {
	delete(m.postCircles[postID], circleID)
	return nil
}

func (m *MockAccessRepository) ListAffectedUserIDs(postID uint) ([]uint, error) {
	seen := make(map[uint]bool)
	var out []uint
	for userID := range m.viewers[postID] {
		if !seen[userID] {
			seen[userID] = true
			out = append(out, userID)
		}
	}
	for circleID := range m.postCircles[postID] {
		for userID := range m.members[circleID] {
			if !seen[userID] {
				seen[userID] = true
				out = append(out, userID)
			}
		}
	}
	return out, nil
}

func (m *MockAccessRepository) IsViewer(postID, userID uint) (bool, error) {
	return m.viewers[postID][userID], nil
}

func (m *MockAccessRepository) IsCircleViewer(postID, userID uint) (bool, error) {
	for circleID := range m.postCircles[postID] {
		if m.members[circleID][userID] {
			return true, nil
		}
	}
	return false, nil
}

// MockUnitOfWork runs the function directly against the shared mocks. Mock
// writes are not transactional, which is fine for the success paths the
// service tests exercise.
type MockUnitOfWork struct {
	repos repository.RepositorySet
}

func (m *MockUnitOfWork) Do(fn func(r repository.RepositorySet) error) error {
	return fn(m.repos)
}

// mockWorld wires every mock repository plus the services under test against
// one shared in-memory state. Caches are nil-backed (always miss) unless a
// test injects a real one.
type mockWorld struct {
	users   *MockUserRepository
	posts   *MockPostRepository
	replies *MockReplyRepository
	authors *MockPostAuthorRepository
	markers *MockReadMarkerRepository
	blocks  *MockBlockRepository
	access  *MockAccessRepository
	uow     *MockUnitOfWork

	blockService      *BlockService
	visibilityService *VisibilityService
	readStateService  *ReadStateService
	replyService      *ReplyService
	obligationService *ObligationService
	postService       *PostService
}

func newMockWorld() *mockWorld {
	users := NewMockUserRepository()
	replies := NewMockReplyRepository()
	markers := NewMockReadMarkerRepository()
	posts := NewMockPostRepository(replies, markers)
	authors := NewMockPostAuthorRepository(posts, replies, markers)
	posts.authors = authors
	blocks := NewMockBlockRepository(authors)
	access := NewMockAccessRepository(posts)

	uow := &MockUnitOfWork{repos: repository.RepositorySet{
		Users:   users,
		Posts:   posts,
		Replies: replies,
		Authors: authors,
		Markers: markers,
		Blocks:  blocks,
		Access:  access,
	}}

	blockService := NewBlockService(blocks, cache.NewBlockCache(nil))
	visibilityService := NewVisibilityService(access, authors, uow, cache.NewVisibilityCache(nil))

	return &mockWorld{
		users:   users,
		posts:   posts,
		replies: replies,
		authors: authors,
		markers: markers,
		blocks:  blocks,
		access:  access,
		uow:     uow,

		blockService:      blockService,
		visibilityService: visibilityService,
		readStateService:  NewReadStateService(markers, posts, replies, blockService, visibilityService),
		replyService:      NewReplyService(uow, blockService),
		obligationService: NewObligationService(authors, posts, users, blockService),
		postService:       NewPostService(uow, posts, markers, blockService, visibilityService),
	}
}

// addUser registers a user with sane defaults.
func (w *mockWorld) addUser(id uint, username string) *models.User {
	user := &models.User{
		ID:               id,
		Username:         username,
		Email:            username + "@example.com",
		PasswordHash:     "x",
		Role:             "user",
		ShowHiatusedOwed: true,
	}
	_ = w.users.Create(user)
	return user
}

// addPost registers an active public post whose creator is a joined author,
// matching what PostService.CreatePost produces.
func (w *mockWorld) addPost(id, continuityID, creatorID uint, createdAt time.Time) *models.Post {
	post := &models.Post{
		ID:           id,
		ContinuityID: continuityID,
		CreatorID:    creatorID,
		Subject:      fmt.Sprintf("post-%d", id),
		Status:       models.StatusActive,
		Privacy:      models.PrivacyPublic,
		CreatedAt:    createdAt,
		TaggedAt:     createdAt,
		EditedAt:     createdAt,
	}
	_ = w.posts.Create(post)
	joinedAt := createdAt
	_ = w.authors.Create(&models.PostAuthor{
		PostID:   post.ID,
		UserID:   creatorID,
		CanOwe:   true,
		Joined:   true,
		JoinedAt: &joinedAt,
	})
	return post
}

// addReply registers a live reply and retags the post, like AddReply does.
func (w *mockWorld) addReply(id, postID, userID uint, order int, createdAt time.Time) *models.Reply {
	reply := &models.Reply{
		ID:         id,
		PostID:     postID,
		UserID:     userID,
		Content:    "content",
		ReplyOrder: order,
		CreatedAt:  createdAt,
	}
	_ = w.replies.Create(reply)
	if post, err := w.posts.FindByID(postID); err == nil && createdAt.After(post.TaggedAt) {
		post.TaggedAt = createdAt
	}
	if _, err := w.authors.Find(postID, userID); err != nil {
		joinedAt := createdAt
		_ = w.authors.Create(&models.PostAuthor{
			PostID:   postID,
			UserID:   userID,
			CanOwe:   true,
			Joined:   true,
			JoinedAt: &joinedAt,
		})
	}
	return reply
}
