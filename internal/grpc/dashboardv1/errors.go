package dashboardv1

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}
