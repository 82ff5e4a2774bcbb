package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Hicham-Azeroual/chatApplication/internal/database"
	apierrors "github.com/Hicham-Azeroual/chatApplication/internal/errors"
	"github.com/Hicham-Azeroual/chatApplication/internal/metrics"
	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/storage"
	"github.com/Hicham-Azeroual/chatApplication/internal/telemetry"
	"github.com/Hicham-Azeroual/chatApplication/internal/util"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	errGroupFieldsRequired = apierrors.BadRequest("Group name and members are required")
	errUnknownMembers      = apierrors.BadRequest("One or more members do not exist")
	errGroupNotFound       = apierrors.NotFound("Group")
	errNotGroupMember      = apierrors.Forbidden("You are not a member of this group")
	errAddNotAdmin         = apierrors.Forbidden("Only admins can add members")
	errRemoveNotAdmin      = apierrors.Forbidden("Only admins can remove members")
	errRemoveAdmin         = apierrors.BadRequest("Cannot remove an admin from the group")
)

// Group message pages
const (
	defaultGroupPageSize = 20
	maxGroupPageSize     = 100
)

// createGroupRequest is accepted as JSON or as a multipart form with an
// optional groupImage file
type createGroupRequest struct {
	Name        string   `json:"name" form:"name"`
	Description string   `json:"description" form:"description"`
	Members     []string `json:"members" form:"members"`
	GroupImage  string   `json:"groupImage"`
}

// CreateGroup handles POST /api/groups
func (h *Handlers) CreateGroup(c *gin.Context) {
	creatorID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var req createGroupRequest
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondError(c, errGroupFieldsRequired)
			return
		}
	} else {
		_ = c.ShouldBind(&req)
		if len(req.Members) == 0 {
			req.Members = c.PostFormArray("members[]")
		}
	}

	name := strings.TrimSpace(req.Name)
	members := lo.Without(util.NormalizeIDs(req.Members), creatorID)
	if name == "" || len(members) == 0 {
		util.RespondError(c, errGroupFieldsRequired)
		return
	}

	users, err := usersByID(ctx, members)
	if err != nil {
		util.RespondInternalError(c, "Failed to create group", err)
		return
	}
	if len(users) != len(members) {
		util.RespondError(c, errUnknownMembers)
		return
	}

	groupImage := strings.TrimSpace(req.GroupImage)
	if url, err := h.uploadFormFile(c, "groupImage", storage.FolderGroups, creatorID); err != nil {
		util.RespondInternalError(c, "Failed to upload group image", err)
		return
	} else if url != "" {
		groupImage = url
	}

	creator := models.User{ID: creatorID}
	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		GroupImage:  groupImage,
		CreatedBy:   creatorID,
		Members:     append([]models.User{creator}, users...),
		Admins:      []models.User{creator},
	}
	// Link existing users through the join tables without upserting them
	if err := database.DB.WithContext(ctx).Omit("Members.*", "Admins.*").Create(group).Error; err != nil {
		util.RespondInternalError(c, "Failed to create group", err)
		return
	}
	metrics.RecordGroupCreated()

	group, err = loadGroup(ctx, group.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	h.emitToUsers(group.MemberIDs(), websocket.EventNewGroup, group)
	c.JSON(http.StatusCreated, group)
}

// GetGroups handles GET /api/groups, the caller's groups newest first
func (h *Handlers) GetGroups(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	groups := []models.Group{}
	err := database.DB.WithContext(c.Request.Context()).
		Joins("JOIN group_members ON group_members.group_id = groups.id AND group_members.user_id = ?", userID).
		Preload("Members", publicUserColumns).
		Preload("Admins", publicUserColumns).
		Order("groups.created_at DESC").
		Find(&groups).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch groups", err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// AddGroupMembers handles POST /api/groups/:groupId/add-members
func (h *Handlers) AddGroupMembers(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	members, ok := bindMemberIDs(c)
	if !ok {
		return
	}

	group, err := loadGroup(ctx, c.Param("groupId"))
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if !group.IsAdmin(userID) {
		util.RespondError(c, errAddNotAdmin)
		return
	}

	users, err := usersByID(ctx, members)
	if err != nil {
		util.RespondInternalError(c, "Failed to add members", err)
		return
	}
	if len(users) != len(members) {
		util.RespondError(c, errUnknownMembers)
		return
	}

	existing := group.MemberIDs()
	added := lo.Filter(users, func(u models.User, _ int) bool {
		return !lo.Contains(existing, u.ID)
	})

	if len(added) > 0 {
		if err := database.DB.WithContext(ctx).Model(group).Association("Members").Append(added); err != nil {
			util.RespondInternalError(c, "Failed to add members", err)
			return
		}
		metrics.RecordMembershipChange("add", len(added))
	}

	group, err = loadGroup(ctx, group.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	addedIDs := lo.Map(added, func(u models.User, _ int) string { return u.ID })
	h.emitToUsers(addedIDs, websocket.EventAddedToGroup, group)
	c.JSON(http.StatusOK, group)
}

// RemoveGroupMembers handles POST /api/groups/:groupId/remove-members
func (h *Handlers) RemoveGroupMembers(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	members, ok := bindMemberIDs(c)
	if !ok {
		return
	}

	group, err := loadGroup(ctx, c.Param("groupId"))
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if !group.IsAdmin(userID) {
		util.RespondError(c, errRemoveNotAdmin)
		return
	}
	if lo.SomeBy(members, group.IsAdmin) {
		util.RespondError(c, errRemoveAdmin)
		return
	}

	removed := lo.Filter(group.Members, func(u models.User, _ int) bool {
		return lo.Contains(members, u.ID)
	})
	if len(removed) > 0 {
		if err := database.DB.WithContext(ctx).Model(group).Association("Members").Delete(removed); err != nil {
			util.RespondInternalError(c, "Failed to remove members", err)
			return
		}
		metrics.RecordMembershipChange("remove", len(removed))
	}

	group, err = loadGroup(ctx, group.ID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	removedIDs := lo.Map(removed, func(u models.User, _ int) string { return u.ID })
	h.emitToUsers(removedIDs, websocket.EventRemovedFromGroup, group)
	c.JSON(http.StatusOK, group)
}

// SendGroupMessage handles POST /api/groups/:groupId/messages
func (h *Handlers) SendGroupMessage(c *gin.Context) {
	sender, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	groupID := c.Param("groupId")

	ctx, span := telemetry.StartChatSpan(c.Request.Context(), "group.send_message", telemetry.ChatEventAttrs{
		SenderID: sender.ID,
		GroupID:  groupID,
	})
	var spanErr error
	defer func() { telemetry.EndSpan(span, spanErr) }()

	memberIDs, err := groupMemberIDsOrNotFound(ctx, groupID)
	if err != nil {
		spanErr = err
		util.RespondError(c, err)
		return
	}
	if !lo.Contains(memberIDs, sender.ID) {
		util.RespondError(c, errNotGroupMember)
		return
	}

	msg, err := h.messageFromForm(c, sender.ID)
	if err != nil {
		spanErr = err
		util.RespondInternalError(c, "Failed to upload attachment", err)
		return
	}
	if !msg.HasContent() {
		util.RespondError(c, errNothingToSend)
		return
	}
	msg.GroupID = strPtr(groupID)
	msg.Reactions = []models.MessageReaction{}

	if err := database.DB.WithContext(ctx).Create(msg).Error; err != nil {
		spanErr = err
		util.RespondInternalError(c, "Failed to send message", err)
		return
	}
	metrics.RecordMessageCreated("group_" + messageKind(msg))

	// Members include the sender so their other tabs stay in sync
	delivered := h.emitToUsers(memberIDs, websocket.EventNewGroupMessage, msg)
	telemetry.RecordDelivery(span, websocket.EventNewGroupMessage, delivered, len(memberIDs))

	c.JSON(http.StatusCreated, msg)
}

// GetGroupMessages handles GET /api/groups/:groupId/messages?page=&limit=
func (h *Handlers) GetGroupMessages(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	groupID := c.Param("groupId")

	memberIDs, err := groupMemberIDsOrNotFound(ctx, groupID)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	if !lo.Contains(memberIDs, userID) {
		util.RespondError(c, errNotGroupMember)
		return
	}

	page := util.ParsePagination(c.Query("page"), c.Query("limit"), defaultGroupPageSize, maxGroupPageSize)
	base := database.DB.WithContext(ctx).Model(&models.Message{}).
		Where("group_id = ? AND is_deleted = ?", groupID, false)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.RespondInternalError(c, "Failed to fetch messages", err)
		return
	}

	messages := []models.Message{}
	err = base.Session(&gorm.Session{}).
		Preload("Sender", publicUserColumns).
		Preload("Reactions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Reactions.User", publicUserColumns).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&messages).Error
	if err != nil {
		util.RespondInternalError(c, "Failed to fetch messages", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"page":     page.Page,
		"limit":    page.Limit,
		"total":    total,
	})
}

// loadGroup fetches a group with members and admins
func loadGroup(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	err := database.DB.WithContext(ctx).
		Preload("Members", publicUserColumns).
		Preload("Admins", publicUserColumns).
		First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	return &group, nil
}

// usersByID loads the users with the given ids; missing ids are simply absent
func usersByID(ctx context.Context, ids []string) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := database.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// groupMemberIDs returns the member ids of a group straight from the join table
func groupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	var ids []string
	err := database.DB.WithContext(ctx).
		Table("group_members").
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// groupMemberIDsOrNotFound is groupMemberIDs that first checks the group exists
func groupMemberIDsOrNotFound(ctx context.Context, groupID string) ([]string, error) {
	var count int64
	if err := database.DB.WithContext(ctx).Model(&models.Group{}).Where("id = ?", groupID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}
	if count == 0 {
		return nil, errGroupNotFound
	}
	return groupMemberIDs(ctx, groupID)
}

func isGroupMember(ctx context.Context, groupID, userID string) (bool, error) {
	var count int64
	err := database.DB.WithContext(ctx).
		Table("group_members").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}
