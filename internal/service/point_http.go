package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/transport/http"
)

// 按 protoc-gen-go-http 生成代码的结构手写

const OperationPointServiceGetPoint = "/point.v1.PointService/GetPoint"
const OperationPointServiceGetHistories = "/point.v1.PointService/GetHistories"
const OperationPointServiceCharge = "/point.v1.PointService/Charge"
const OperationPointServiceUse = "/point.v1.PointService/Use"
const OperationPointServiceOpen = "/point.v1.PointService/Open"

type PointHTTPServer interface {
	GetPoint(context.Context, *UserPointRequest) (*UserPointReply, error)
	GetHistories(context.Context, *UserPointRequest) (*PointHistoriesReply, error)
	Charge(context.Context, *AmountRequest) (*UserPointReply, error)
	Use(context.Context, *AmountRequest) (*UserPointReply, error)
	Open(context.Context, *UserPointRequest) (*UserPointReply, error)
}

func RegisterPointHTTPServer(s *http.Server, srv PointHTTPServer) {
	r := s.Route("/")
	r.GET("/point/{id}", _Point_GetPoint0_HTTP_Handler(srv))
	r.GET("/point/{id}/histories", _Point_GetHistories0_HTTP_Handler(srv))
	r.PATCH("/point/{id}/charge", _Point_Charge0_HTTP_Handler(srv))
	r.PATCH("/point/{id}/use", _Point_Use0_HTTP_Handler(srv))
	r.POST("/point/{id}", _Point_Open0_HTTP_Handler(srv))
}

func _Point_GetPoint0_HTTP_Handler(srv PointHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in UserPointRequest
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationPointServiceGetPoint)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetPoint(ctx, req.(*UserPointRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*UserPointReply)
		return ctx.Result(200, reply)
	}
}

func _Point_GetHistories0_HTTP_Handler(srv PointHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in UserPointRequest
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationPointServiceGetHistories)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.GetHistories(ctx, req.(*UserPointRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*PointHistoriesReply)
		return ctx.Result(200, reply.Histories)
	}
}

func _Point_Charge0_HTTP_Handler(srv PointHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in AmountRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationPointServiceCharge)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Charge(ctx, req.(*AmountRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*UserPointReply)
		return ctx.Result(200, reply)
	}
}

func _Point_Use0_HTTP_Handler(srv PointHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in AmountRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationPointServiceUse)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Use(ctx, req.(*AmountRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*UserPointReply)
		return ctx.Result(200, reply)
	}
}

func _Point_Open0_HTTP_Handler(srv PointHTTPServer) func(ctx http.Context) error {
	return func(ctx http.Context) error {
		var in UserPointRequest
		if err := ctx.BindVars(&in); err != nil {
			return err
		}
		http.SetOperation(ctx, OperationPointServiceOpen)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return srv.Open(ctx, req.(*UserPointRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*UserPointReply)
		return ctx.Result(200, reply)
	}
}
