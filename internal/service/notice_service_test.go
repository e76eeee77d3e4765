package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pudocs/dept-portal-api/internal/docstore"
	"github.com/pudocs/dept-portal-api/internal/models"
	"github.com/pudocs/dept-portal-api/internal/repository"
	appErrors "github.com/pudocs/dept-portal-api/pkg/errors"
)

var (
	staffUser  = models.UserInfo{UID: "staff-1", Email: "meena@example.edu", Role: models.RoleStaff}
	officeUser = models.UserInfo{UID: "office-1", Email: "office@example.edu", Role: models.RoleOffice}
)

func newNoticeService() *NoticeService {
	return NewNoticeService(repository.NewNoticeRepository(docstore.NewMemStore()), nil, nil)
}

func postNotice(t *testing.T, svc *NoticeService, creator models.UserInfo, title string) *models.Notice {
	t.Helper()
	notice, err := svc.CreateNotice(context.Background(), creator, CreateNoticeRequest{
		Title:    title,
		Content:  "Internal exams begin on the 10th.",
		Category: "academic",
	})
	require.NoError(t, err)
	return notice
}

func TestNoticeStaffSubmissionStartsPending(t *testing.T) {
	svc := newNoticeService()

	notice := postNotice(t, svc, staffUser, "Exam schedule")
	assert.Equal(t, models.ApprovalPending, notice.Status)
	assert.Equal(t, "staff-1", notice.CreatedBy)
	assert.Equal(t, models.RoleStaff, notice.CreatedByRole)
}

func TestNoticeOfficeSubmissionAutoApproves(t *testing.T) {
	svc := newNoticeService()

	notice := postNotice(t, svc, officeUser, "Fee deadline extended")
	assert.Equal(t, models.ApprovalApproved, notice.Status)
}

func TestNoticeListHidesPendingFromNonOffice(t *testing.T) {
	svc := newNoticeService()
	postNotice(t, svc, staffUser, "Pending one")
	postNotice(t, svc, officeUser, "Approved one")

	visible, err := svc.ListNotices(context.Background(), models.RoleStudent, models.NoticeFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Approved one", visible[0].Title)

	all, err := svc.ListNotices(context.Background(), models.RoleOffice, models.NoticeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNoticeReviewTransitions(t *testing.T) {
	svc := newNoticeService()
	pending := postNotice(t, svc, staffUser, "Needs review")

	approved, err := svc.ReviewNotice(context.Background(), pending.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.Status)

	_, err = svc.ReviewNotice(context.Background(), pending.ID, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestNoticeReviewReject(t *testing.T) {
	svc := newNoticeService()
	pending := postNotice(t, svc, staffUser, "Off topic")

	rejected, err := svc.ReviewNotice(context.Background(), pending.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, rejected.Status)

	visible, err := svc.ListNotices(context.Background(), models.RoleStudent, models.NoticeFilter{})
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestNoticeDeleteMissing(t *testing.T) {
	svc := newNoticeService()

	err := svc.DeleteNotice(context.Background(), "no-such-notice")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEventWorkflowMirrorsNotices(t *testing.T) {
	svc := newNoticeService()

	event, err := svc.CreateEvent(context.Background(), staffUser, CreateEventRequest{
		Name:        "Tech symposium",
		Description: "Annual department symposium.",
		Category:    "cultural",
		Venue:       "Main auditorium",
		StartsAt:    time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, event.Status)

	approved, err := svc.ReviewEvent(context.Background(), event.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.Status)

	visible, err := svc.ListEvents(context.Background(), models.RoleStudent, models.NoticeFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Tech symposium", visible[0].Name)
}
