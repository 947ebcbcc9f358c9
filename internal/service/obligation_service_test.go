package service

import (
	"errors"
	"testing"
	"time"

	"github.com/quillforge/continuum-backend/internal/models"
)

func TestOwedWhenOtherAuthorMovedLast(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")
	w.addPost(10, 1, 1, base)
	w.addReply(100, 10, 2, 0, base.Add(time.Hour))

	// Bob contributed last: alice owes a reply, bob does not.
	owed, err := w.obligationService.Owed(1, OwedActive)
	if err != nil {
		t.Fatalf("Owed: %v", err)
	}
	if len(owed) != 1 || owed[0].PostID != 10 {
		t.Fatalf("expected alice to owe post 10, got %+v", owed)
	}

	owed, err = w.obligationService.Owed(2, OwedActive)
	if err != nil {
		t.Fatalf("Owed: %v", err)
	}
	if len(owed) != 0 {
		t.Errorf("bob moved last, expected nothing owed, got %+v", owed)
	}

	// Alice replies back: the obligation flips.
	w.addReply(101, 10, 1, 1, base.Add(2*time.Hour))
	owed, _ = w.obligationService.Owed(1, OwedActive)
	if len(owed) != 0 {
		t.Errorf("alice moved last, expected nothing owed, got %+v", owed)
	}
	owed, _ = w.obligationService.Owed(2, OwedActive)
	if len(owed) != 1 {
		t.Errorf("expected bob to owe now, got %+v", owed)
	}
}

func TestOwedSkipsClosedAndIgnoredPosts(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")

	complete := w.addPost(10, 1, 1, base)
	complete.Status = models.StatusComplete
	w.addReply(100, 10, 2, 0, base.Add(time.Hour))

	abandoned := w.addPost(11, 1, 1, base)
	abandoned.Status = models.StatusAbandoned
	w.addReply(101, 11, 2, 0, base.Add(time.Hour))

	w.addPost(12, 1, 1, base)
	w.addReply(102, 12, 2, 0, base.Add(time.Hour))
	if err := w.readStateService.Ignore(1, 12, models.TargetPost); err != nil {
		t.Fatalf("Ignore: %v", err)
	}

	owed, err := w.obligationService.Owed(1, OwedActive)
	if err != nil {
		t.Fatalf("Owed: %v", err)
	}
	if len(owed) != 0 {
		t.Errorf("complete/abandoned/ignored posts are never owed, got %+v", owed)
	}
}

func TestOwedSkipsBlockHiddenPosts(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")
	w.addPost(10, 1, 1, base)
	w.addReply(100, 10, 2, 0, base.Add(time.Hour))

	if err := w.blockService.SetBlock(1, 2, false, true); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}

	owed, err := w.obligationService.Owed(1, OwedActive)
	if err != nil {
		t.Fatalf("Owed: %v", err)
	}
	if len(owed) != 0 {
		t.Errorf("block-hidden posts are not owed, got %+v", owed)
	}
}

func TestOwedHiatusedViews(t *testing.T) {
	w := newMockWorld()
	alice := w.addUser(1, "alice")
	w.addUser(2, "bob")
	hiatus := w.addPost(10, 1, 1, base)
	hiatus.Status = models.StatusHiatus
	w.addReply(100, 10, 2, 0, base.Add(time.Hour))

	// Default preference shows hiatused posts in the active view, flagged.
	owed, err := w.obligationService.Owed(1, OwedActive)
	if err != nil {
		t.Fatalf("Owed: %v", err)
	}
	if len(owed) != 1 || !owed[0].Hiatused {
		t.Fatalf("expected hiatused post in active view, got %+v", owed)
	}

	// With the preference off, it drops from active but stays in hiatused.
	alice.ShowHiatusedOwed = false
	owed, _ = w.obligationService.Owed(1, OwedActive)
	if len(owed) != 0 {
		t.Errorf("hiatused post should be filtered, got %+v", owed)
	}
	owed, _ = w.obligationService.Owed(1, OwedHiatused)
	if len(owed) != 1 || owed[0].PostID != 10 {
		t.Errorf("expected post in hiatused view, got %+v", owed)
	}
}

func TestOwedStalenessWindow(t *testing.T) {
	w := newMockWorld()
	alice := w.addUser(1, "alice")
	w.addUser(2, "bob")
	old := time.Now().Add(-90 * 24 * time.Hour)
	w.addPost(10, 1, 1, old)
	w.addReply(100, 10, 2, 0, old.Add(time.Hour))

	alice.ShowHiatusedOwed = false

	// 30-day default window: a post idle for months counts as hiatused.
	owed, err := w.obligationService.Owed(1, OwedActive)
	if err != nil {
		t.Fatalf("Owed: %v", err)
	}
	if len(owed) != 0 {
		t.Errorf("stale post should auto-hiatus, got %+v", owed)
	}

	// Widening the window past the idle time makes it active again.
	w.obligationService.SetStalenessWindow(365 * 24 * time.Hour)
	owed, _ = w.obligationService.Owed(1, OwedActive)
	if len(owed) != 1 {
		t.Errorf("expected active post under a wide window, got %+v", owed)
	}
}

func TestOptOutAndOptIn(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")
	w.addPost(10, 1, 1, base)
	w.addReply(100, 10, 2, 0, base.Add(time.Hour))

	if err := w.obligationService.OptOut(10, 1); err != nil {
		t.Fatalf("OptOut: %v", err)
	}

	owed, _ := w.obligationService.Owed(1, OwedActive)
	if len(owed) != 0 {
		t.Errorf("opted-out post must leave the active view, got %+v", owed)
	}
	hidden, _ := w.obligationService.Owed(1, OwedHidden)
	if len(hidden) != 1 || hidden[0].PostID != 10 {
		t.Errorf("opted-out post belongs to the hidden view, got %+v", hidden)
	}

	if err := w.obligationService.OptIn(10, 1); err != nil {
		t.Fatalf("OptIn: %v", err)
	}
	owed, _ = w.obligationService.Owed(1, OwedActive)
	if len(owed) != 1 {
		t.Errorf("opt-in must restore the obligation, got %+v", owed)
	}
}

func TestOptOutNonAuthorIsNoOp(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")
	w.addPost(10, 1, 1, base)

	if err := w.obligationService.OptOut(10, 2); err != nil {
		t.Errorf("OptOut for a non-author must be a no-op, got %v", err)
	}
	if err := w.obligationService.OptIn(10, 2); err != nil {
		t.Errorf("OptIn for a non-author must be a no-op, got %v", err)
	}
	if _, err := w.authors.Find(10, 2); err == nil {
		t.Errorf("no author record should have been created")
	}
}

func TestOptOutUnjoinedDeletesRecord(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")
	post := w.addPost(10, 1, 1, base)
	post.AuthorsLocked = true

	if err := w.obligationService.Invite(10, 1, 2); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if err := w.obligationService.OptOut(10, 2); err != nil {
		t.Fatalf("OptOut: %v", err)
	}

	// An invited-but-unjoined record with can_owe gone has no reason to stay.
	if _, err := w.authors.Find(10, 2); err == nil {
		t.Errorf("expected unjoined opted-out record deleted")
	}
}

func TestInviteRules(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")
	w.addUser(3, "carol")
	post := w.addPost(10, 1, 1, base)

	// Invites require the author lock.
	if err := w.obligationService.Invite(10, 1, 2); !errors.Is(err, ErrNotAuthorLocked) {
		t.Errorf("expected ErrNotAuthorLocked, got %v", err)
	}
	post.AuthorsLocked = true

	// Outsiders cannot invite.
	if err := w.obligationService.Invite(10, 3, 2); !errors.Is(err, ErrNotAnAuthor) {
		t.Errorf("expected ErrNotAnAuthor, got %v", err)
	}

	// The creator can.
	if err := w.obligationService.Invite(10, 1, 2); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	author, err := w.authors.Find(10, 2)
	if err != nil {
		t.Fatalf("expected invite record: %v", err)
	}
	if author.Joined || author.InvitedByID == nil || *author.InvitedByID != 1 {
		t.Errorf("expected unjoined record invited by alice, got %+v", author)
	}

	// Inviting twice is idempotent.
	if err := w.obligationService.Invite(10, 1, 2); err != nil {
		t.Errorf("repeat invite should be a no-op, got %v", err)
	}
}

func TestUninviteJoinedIsPermanentNoOp(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")
	post := w.addPost(10, 1, 1, base)
	post.AuthorsLocked = true

	if err := w.obligationService.Invite(10, 1, 2); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if _, err := w.replyService.AddReply(2, AddReplyInput{PostID: 10, Content: "joined"}); err != nil {
		t.Fatalf("AddReply: %v", err)
	}

	// Joined authors cannot be un-invited away.
	if err := w.obligationService.Uninvite(10, 2); err != nil {
		t.Fatalf("Uninvite: %v", err)
	}
	author, err := w.authors.Find(10, 2)
	if err != nil || !author.Joined {
		t.Errorf("joined author must survive uninvite, got %+v (%v)", author, err)
	}
}

func TestUninviteRemovesPendingInvite(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")
	post := w.addPost(10, 1, 1, base)
	post.AuthorsLocked = true

	if err := w.obligationService.Invite(10, 1, 2); err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if err := w.obligationService.Uninvite(10, 2); err != nil {
		t.Fatalf("Uninvite: %v", err)
	}
	if _, err := w.authors.Find(10, 2); err == nil {
		t.Errorf("pending invite should be removed")
	}

	// Uninviting an absent user is a no-op.
	if err := w.obligationService.Uninvite(10, 2); err != nil {
		t.Errorf("expected no-op, got %v", err)
	}
}

func TestDeleteLastReplyDoesNotAffectOtherObligations(t *testing.T) {
	w := newMockWorld()
	w.addUser(1, "alice")
	w.addUser(2, "bob")
	w.addUser(3, "carol")
	w.addPost(10, 1, 1, base)
	w.addReply(100, 10, 2, 0, base.Add(1*time.Hour))
	carolReply := w.addReply(101, 10, 3, 1, base.Add(2*time.Hour))

	if err := w.replyService.DeleteReply(carolReply.ID); err != nil {
		t.Fatalf("DeleteReply: %v", err)
	}

	// With carol's reply gone bob is the last contributor again, so alice
	// still owes and bob does not.
	owed, _ := w.obligationService.Owed(1, OwedActive)
	if len(owed) != 1 {
		t.Errorf("alice should still owe, got %+v", owed)
	}
	owed, _ = w.obligationService.Owed(2, OwedActive)
	if len(owed) != 0 {
		t.Errorf("bob moved last, expected nothing owed, got %+v", owed)
	}
}
