package services

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/types"
)

// GroupService owns expense group lifecycle and membership management.
type GroupService struct {
	groups store.GroupStore
	users  store.UserStore
}

// NewGroupService creates a new GroupService.
func NewGroupService(groups store.GroupStore, users store.UserStore) *GroupService {
	return &GroupService{groups: groups, users: users}
}

// CreateGroup creates a group with the creator as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, userID string, req *types.CreateGroupRequest) (*types.ExpenseGroup, error) {
	if req.Name == "" {
		return nil, apperrors.ValidationFailed("group name is required", "")
	}

	group := &types.ExpenseGroup{Name: req.Name, CreatedBy: userID}
	id, err := s.groups.CreateGroup(ctx, group)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	created, err := s.groups.GetGroup(ctx, id)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return created, nil
}

// GetGroup returns a group with its membership rows for a member.
func (s *GroupService) GetGroup(ctx context.Context, groupID, userID string) (*types.GroupWithMembers, error) {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Group", groupID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &types.GroupWithMembers{Group: *group, Members: members}, nil
}

// ListUserGroups returns all groups the user belongs to.
func (s *GroupService) ListUserGroups(ctx context.Context, userID string) ([]types.ExpenseGroup, error) {
	groups, err := s.groups.ListUserGroups(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return groups, nil
}

// UpdateGroup updates a group's mutable fields; creator-only.
func (s *GroupService) UpdateGroup(ctx context.Context, groupID, userID string, req *types.UpdateGroupRequest) (*types.ExpenseGroup, error) {
	if err := s.requireCreator(ctx, groupID, userID); err != nil {
		return nil, err
	}

	updated, err := s.groups.UpdateGroup(ctx, groupID, req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Group", groupID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return updated, nil
}

// DeleteGroup removes a group and everything under it; creator-only.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, userID string) error {
	if err := s.requireCreator(ctx, groupID, userID); err != nil {
		return err
	}

	if err := s.groups.DeleteGroup(ctx, groupID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Group", groupID)
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// AddMember adds a user to the group. Any member may add; duplicates map to
// an "already a member" conflict.
func (s *GroupService) AddMember(ctx context.Context, groupID, callerID, newUserID string) error {
	if err := s.requireMember(ctx, groupID, callerID); err != nil {
		return err
	}

	if err := s.groups.AddMember(ctx, groupID, newUserID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return apperrors.AlreadyMember("group")
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// RemoveMember removes a user from the group. Members may remove themselves;
// the creator may remove anyone.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, callerID, targetUserID string) error {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Group", groupID)
		}
		return apperrors.NewDatabaseError(err)
	}

	if callerID != targetUserID && callerID != group.CreatedBy {
		return apperrors.Forbidden("Only the group creator may remove other members",
			fmt.Sprintf("Group ID: %s", groupID))
	}

	if err := s.groups.RemoveMember(ctx, groupID, targetUserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Group member", targetUserID)
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// MemberProfiles returns the public profiles of all group members.
func (s *GroupService) MemberProfiles(ctx context.Context, groupID, userID string) ([]types.UserProfile, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}

	profiles, err := s.users.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return profiles, nil
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID string) error {
	isMember, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if !isMember {
		return apperrors.Forbidden("Not a member of this group",
			fmt.Sprintf("Group ID: %s", groupID))
	}
	return nil
}

func (s *GroupService) requireCreator(ctx context.Context, groupID, userID string) error {
	group, err := s.groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Group", groupID)
		}
		return apperrors.NewDatabaseError(err)
	}
	if group.CreatedBy != userID {
		return apperrors.Forbidden("Only the group creator may do this",
			fmt.Sprintf("Group ID: %s", groupID))
	}
	return nil
}
