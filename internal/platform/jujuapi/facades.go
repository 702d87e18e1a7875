package jujuapi

import (
	"context"

	"github.com/imamik/bundletester/internal/environment"
)

type loginParams struct {
	AuthTag  string `json:"AuthTag"`
	Password string `json:"Password"`
}

type statusParams struct {
	Patterns []string `json:"Patterns"`
}

type serviceParams struct {
	ServiceName string `json:"ServiceName"`
}

type resolvedParams struct {
	UnitName string `json:"UnitName"`
	Retry    bool   `json:"Retry"`
}

type destroyMachinesParams struct {
	MachineNames []string `json:"MachineNames"`
	Force        bool     `json:"Force"`
}

// Login authenticates the connection as user.
func (c *Client) Login(ctx context.Context, user, password string) error {
	return c.Call(ctx, "Admin", "Login", loginParams{AuthTag: "user-" + user, Password: password}, nil)
}

// FullStatus returns the status of every service and machine.
func (c *Client) FullStatus(ctx context.Context) (*environment.Status, error) {
	var status environment.Status
	if err := c.Call(ctx, "Client", "FullStatus", statusParams{Patterns: []string{}}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DestroyService destroys a service and all of its units.
func (c *Client) DestroyService(ctx context.Context, name string) error {
	return c.Call(ctx, "Client", "ServiceDestroy", serviceParams{ServiceName: name}, nil)
}

// Resolved marks a unit's error as resolved without retrying the hook.
func (c *Client) Resolved(ctx context.Context, unit string) error {
	return c.Call(ctx, "Client", "Resolved", resolvedParams{UnitName: unit}, nil)
}

// DestroyMachines destroys the named machines.
func (c *Client) DestroyMachines(ctx context.Context, force bool, names ...string) error {
	return c.Call(ctx, "Client", "DestroyMachines", destroyMachinesParams{MachineNames: names, Force: force}, nil)
}
