package router

import (
	"context"
	"errors"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/internal/service"
)

func commandTable(svc Services) map[string]Handler {
	return map[string]Handler{
		"init_db": func(ctx context.Context, _ *Args) (any, error) {
			if svc.InitSchema == nil {
				return nil, errors.New("schema initialisation is not configured")
			}
			if err := svc.InitSchema(ctx); err != nil {
				return nil, err
			}
			return dto.OK(), nil
		},

		// Users
		"ensure_user": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.ExternalID("external_id")
			if err != nil {
				return nil, err
			}
			return svc.Users.EnsureUser(ctx, id, a.Optional())
		},
		"get_user": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.ExternalID("external_id")
			if err != nil {
				return nil, err
			}
			return svc.Users.GetUser(ctx, id)
		},
		"list_users": func(ctx context.Context, _ *Args) (any, error) {
			return svc.Users.ListUsers(ctx)
		},
		"set_user_role": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.ExternalID("external_id")
			if err != nil {
				return nil, err
			}
			role, err := a.String("role")
			if err != nil {
				return nil, err
			}
			return svc.Users.SetUserRole(ctx, id, role)
		},
		"set_user_group": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.ExternalID("external_id")
			if err != nil {
				return nil, err
			}
			group, err := a.String("group")
			if err != nil {
				return nil, err
			}
			return svc.Users.SetUserGroup(ctx, id, group)
		},

		// Requests
		"create_request": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.ExternalID("external_id")
			if err != nil {
				return nil, err
			}
			requestType, err := a.String("type")
			if err != nil {
				return nil, err
			}
			text, err := a.Rest("text")
			if err != nil {
				return nil, err
			}
			return svc.Requests.CreateRequest(ctx, id, requestType, text)
		},
		"list_requests": func(ctx context.Context, _ *Args) (any, error) {
			return svc.Requests.ListRequests(ctx)
		},
		"list_requests_filtered": func(ctx context.Context, a *Args) (any, error) {
			status, err := a.String("status")
			if err != nil {
				return nil, err
			}
			return svc.Requests.ListRequestsFiltered(ctx, status)
		},
		"list_user_requests": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.ExternalID("external_id")
			if err != nil {
				return nil, err
			}
			return svc.Requests.ListUserRequests(ctx, id)
		},
		"get_request": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.InternalID("request_id")
			if err != nil {
				return nil, err
			}
			return svc.Requests.GetRequest(ctx, id)
		},
		"update_request_status": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.InternalID("request_id")
			if err != nil {
				return nil, err
			}
			status, err := a.String("status")
			if err != nil {
				return nil, err
			}
			comment := a.Optional()
			adminID, err := a.OptionalExternalID("admin_external_id")
			if err != nil {
				return nil, err
			}
			return svc.Requests.UpdateRequestStatus(ctx, service.UpdateRequestStatusInput{
				ID:      id,
				Status:  status,
				Comment: comment,
				AdminID: adminID,
			})
		},
		"search_requests": func(ctx context.Context, a *Args) (any, error) {
			query, err := a.Rest("query")
			if err != nil {
				return nil, err
			}
			return svc.Requests.SearchRequests(ctx, query)
		},

		// Callbacks
		"create_callback": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.ExternalID("external_id")
			if err != nil {
				return nil, err
			}
			phone, err := a.String("phone")
			if err != nil {
				return nil, err
			}
			return svc.Callbacks.CreateCallback(ctx, id, phone, a.OptionalRest())
		},
		"list_callbacks": func(ctx context.Context, _ *Args) (any, error) {
			return svc.Callbacks.ListCallbacks(ctx)
		},
		"list_user_callbacks": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.ExternalID("external_id")
			if err != nil {
				return nil, err
			}
			return svc.Callbacks.ListUserCallbacks(ctx, id)
		},
		"update_callback_status": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.InternalID("callback_id")
			if err != nil {
				return nil, err
			}
			status, err := a.String("status")
			if err != nil {
				return nil, err
			}
			return svc.Callbacks.UpdateCallbackStatus(ctx, id, status)
		},

		// Broadcasts
		"create_broadcast": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.ExternalID("admin_external_id")
			if err != nil {
				return nil, err
			}
			text, err := a.Rest("text")
			if err != nil {
				return nil, err
			}
			return svc.Broadcasts.CreateBroadcast(ctx, id, text)
		},
		"add_broadcast_attachment": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.InternalID("broadcast_id")
			if err != nil {
				return nil, err
			}
			kind, err := a.String("kind")
			if err != nil {
				return nil, err
			}
			url, err := a.String("url")
			if err != nil {
				return nil, err
			}
			return svc.Broadcasts.AddBroadcastAttachment(ctx, service.AddAttachmentInput{
				BroadcastID: id,
				Kind:        kind,
				URL:         url,
				Filename:    a.Optional(),
			})
		},
		"list_broadcasts": func(ctx context.Context, _ *Args) (any, error) {
			return svc.Broadcasts.ListBroadcasts(ctx)
		},
		"get_broadcast": func(ctx context.Context, a *Args) (any, error) {
			id, err := a.InternalID("broadcast_id")
			if err != nil {
				return nil, err
			}
			return svc.Broadcasts.GetBroadcast(ctx, id)
		},
	}
}
