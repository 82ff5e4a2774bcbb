package handlers

import (
	"fmt"
	"net/http"

	"github.com/Hicham-Azeroual/chatApplication/internal/models"
	"github.com/Hicham-Azeroual/chatApplication/internal/websocket"
	"github.com/stretchr/testify/assert"
)

// =============================================================================
// GROUP ENDPOINT TESTS
// =============================================================================

func memberIDs(g models.Group) []string {
	return g.MemberIDs()
}

// createGroup creates a group owned by alice with bob as the other member
func (suite *HandlersTestSuite) createGroup(name string, members ...*models.User) models.Group {
	ids := []string{}
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	w := suite.request(http.MethodPost, "/api/groups", suite.alice, map[string]interface{}{
		"name":        name,
		"description": "a test group",
		"members":     ids,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var group models.Group
	suite.decode(w, &group)
	return group
}

func (suite *HandlersTestSuite) TestCreateGroup() {
	t := suite.T()
	group := suite.createGroup("Book club", suite.bob)

	assert.Equal(t, "Book club", group.Name)
	assert.Equal(t, suite.alice.ID, group.CreatedBy)
	assert.ElementsMatch(t, []string{suite.alice.ID, suite.bob.ID}, memberIDs(group))
	suite.Require().Len(group.Admins, 1)
	assert.Equal(t, suite.alice.ID, group.Admins[0].ID)

	assert.ElementsMatch(t, []string{suite.alice.ID, suite.bob.ID}, suite.emitter.recipients(websocket.EventNewGroup))
}

func (suite *HandlersTestSuite) TestCreateGroupValidation() {
	w := suite.request(http.MethodPost, "/api/groups", suite.alice, map[string]interface{}{
		"name": "", "members": []string{suite.bob.ID},
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Group name and members are required", suite.errorMessage(w))

	w = suite.request(http.MethodPost, "/api/groups", suite.alice, map[string]interface{}{
		"name": "Lonely", "members": []string{},
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/groups", suite.alice, map[string]interface{}{
		"name": "Ghosts", "members": []string{suite.bob.ID, "ghost"},
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("One or more members do not exist", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestCreateGroupMultipartWithImage() {
	w := suite.multipartRequest(http.MethodPost, "/api/groups", suite.alice,
		map[string]string{"name": "Pictures", "members": suite.carol.ID},
		formFile{"groupImage", "cover.jpg", "image/jpeg", []byte("jpg")},
	)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var group models.Group
	suite.decode(w, &group)
	suite.Equal("https://cdn.test/groups/"+suite.alice.ID+"/cover.jpg", group.GroupImage)
	suite.ElementsMatch([]string{suite.alice.ID, suite.carol.ID}, memberIDs(group))
}

func (suite *HandlersTestSuite) TestGetGroupsOnlyMine() {
	suite.createGroup("With Bob", suite.bob)
	suite.createGroup("With Carol", suite.carol)

	w := suite.request(http.MethodGet, "/api/groups", suite.bob, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var groups []models.Group
	suite.decode(w, &groups)
	suite.Require().Len(groups, 1)
	suite.Equal("With Bob", groups[0].Name)

	w = suite.request(http.MethodGet, "/api/groups", suite.alice, nil)
	suite.decode(w, &groups)
	suite.Len(groups, 2)
}

func (suite *HandlersTestSuite) TestAddMembers() {
	t := suite.T()
	group := suite.createGroup("Growing", suite.bob)
	path := fmt.Sprintf("/api/groups/%s/add-members", group.ID)

	w := suite.request(http.MethodPost, path, suite.bob, map[string]interface{}{"members": []string{suite.carol.ID}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Only admins can add members", suite.errorMessage(w))

	w = suite.request(http.MethodPost, path, suite.alice, map[string]interface{}{"members": []string{"ghost"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, path, suite.alice, map[string]interface{}{"members": []string{suite.bob.ID, suite.carol.ID}})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated models.Group
	suite.decode(w, &updated)
	assert.ElementsMatch(t, []string{suite.alice.ID, suite.bob.ID, suite.carol.ID}, memberIDs(updated))

	// Only the newcomer is told
	assert.Equal(t, []string{suite.carol.ID}, suite.emitter.recipients(websocket.EventAddedToGroup))

	w = suite.request(http.MethodPost, "/api/groups/missing/add-members", suite.alice, map[string]interface{}{"members": []string{suite.carol.ID}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestRemoveMembers() {
	t := suite.T()
	group := suite.createGroup("Shrinking", suite.bob, suite.carol)
	path := fmt.Sprintf("/api/groups/%s/remove-members", group.ID)

	w := suite.request(http.MethodPost, path, suite.bob, map[string]interface{}{"members": []string{suite.carol.ID}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPost, path, suite.alice, map[string]interface{}{"members": []string{suite.alice.ID}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot remove an admin from the group", suite.errorMessage(w))

	w = suite.request(http.MethodPost, path, suite.alice, map[string]interface{}{"members": []string{suite.carol.ID}})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated models.Group
	suite.decode(w, &updated)
	assert.ElementsMatch(t, []string{suite.alice.ID, suite.bob.ID}, memberIDs(updated))
	assert.Equal(t, []string{suite.carol.ID}, suite.emitter.recipients(websocket.EventRemovedFromGroup))

	// Carol can no longer post
	w = suite.request(http.MethodPost, "/api/groups/"+group.ID+"/messages", suite.carol, map[string]string{"text": "hello?"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestGroupMessagesFanOutIncludingSender() {
	t := suite.T()
	group := suite.createGroup("Chatty", suite.bob, suite.carol)
	suite.emitter.offline[suite.carol.ID] = true

	w := suite.request(http.MethodPost, "/api/groups/"+group.ID+"/messages", suite.bob, map[string]string{"text": "hey all"})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var msg models.Message
	suite.decode(w, &msg)
	assert.Equal(t, group.ID, derefString(msg.GroupID))
	assert.Nil(t, msg.ReceiverID)

	// Carol is offline; the others still receive it
	assert.ElementsMatch(t, []string{suite.alice.ID, suite.bob.ID}, suite.emitter.recipients(websocket.EventNewGroupMessage))

	w = suite.request(http.MethodPost, "/api/groups/"+group.ID+"/messages", suite.bob, map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/groups/missing/messages", suite.bob, map[string]string{"text": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestGetGroupMessagesPaginated() {
	t := suite.T()
	group := suite.createGroup("Paged", suite.bob)
	for i := 0; i < 5; i++ {
		w := suite.request(http.MethodPost, "/api/groups/"+group.ID+"/messages", suite.alice, map[string]string{"text": fmt.Sprintf("m%d", i)})
		suite.Require().Equal(http.StatusCreated, w.Code)
	}

	w := suite.request(http.MethodGet, "/api/groups/"+group.ID+"/messages?page=1&limit=2", suite.bob, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var page struct {
		Messages []models.Message `json:"messages"`
		Page     int              `json:"page"`
		Limit    int              `json:"limit"`
		Total    int64            `json:"total"`
	}
	suite.decode(w, &page)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, int64(5), page.Total)
	assert.Len(t, page.Messages, 2)

	w = suite.request(http.MethodGet, "/api/groups/"+group.ID+"/messages?limit=500", suite.bob, nil)
	suite.decode(w, &page)
	assert.Equal(t, maxGroupPageSize, page.Limit)
	assert.Len(t, page.Messages, 5)

	w = suite.request(http.MethodGet, "/api/groups/"+group.ID+"/messages", suite.carol, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You are not a member of this group", suite.errorMessage(w))
}

func (suite *HandlersTestSuite) TestGroupMessageUpdateReachesMembers() {
	group := suite.createGroup("Edits", suite.bob, suite.carol)
	w := suite.request(http.MethodPost, "/api/groups/"+group.ID+"/messages", suite.alice, map[string]string{"text": "draft"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var msg models.Message
	suite.decode(w, &msg)

	w = suite.request(http.MethodPatch, "/api/messages/update/"+msg.ID, suite.alice, map[string]string{"text": "final"})
	suite.Require().Equal(http.StatusOK, w.Code)

	suite.ElementsMatch([]string{suite.alice.ID, suite.bob.ID, suite.carol.ID}, suite.emitter.recipients(websocket.EventMessageUpdated))
}
