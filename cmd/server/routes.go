package main

import (
	"github.com/gin-gonic/gin"

	"bridge-gate.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	transferHandler       *handlers.TransferHandler
	confirmationHandler   *handlers.ConfirmationHandler
	assetHandler          *handlers.AssetHandler
	orderHandler          *handlers.OrderHandler
	adminHandler          *handlers.AdminHandler
	messageHandler        *handlers.MessageHandler
	authMiddleware        gin.HandlerFunc
	idempotencyMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Public reads
		v1.GET("/settings", d.adminHandler.GetSettings)
		v1.GET("/roles/:address", d.adminHandler.GetRoles)
		v1.GET("/balances/:holder", d.adminHandler.GetBalances)
		v1.GET("/messages", d.messageHandler.ListMessages)

		v1.GET("/chains", d.assetHandler.ListChains)
		v1.GET("/assets", d.assetHandler.ListAssets)
		v1.GET("/assets/:id", d.assetHandler.GetAsset)

		v1.GET("/submissions", d.transferHandler.ListSubmissions)
		v1.GET("/submissions/:id", d.transferHandler.GetSubmission)

		v1.GET("/oracles", d.confirmationHandler.ListOracles)
		v1.GET("/confirmations/params", d.confirmationHandler.GetParams)
		v1.GET("/confirmations/:id", d.confirmationHandler.GetTally)

		v1.POST("/orders/id", d.orderHandler.ComputeOrderID)
		v1.GET("/orders/:id", d.orderHandler.GetOrder)

		// Transfer routes (protected)
		transfers := v1.Group("/transfers")
		transfers.Use(d.authMiddleware)
		{
			transfers.POST("/send", d.idempotencyMiddleware, d.transferHandler.Send)
			transfers.POST("/burn", d.idempotencyMiddleware, d.transferHandler.Burn)
			transfers.POST("/claim", d.idempotencyMiddleware, d.transferHandler.Claim)
		}

		reserves := v1.Group("/reserves")
		reserves.Use(d.authMiddleware)
		{
			reserves.POST("/request", d.transferHandler.RequestReserves)
			reserves.POST("/return", d.transferHandler.ReturnReserves)
		}

		v1.POST("/assets", d.authMiddleware, d.assetHandler.RegisterAsset)
		v1.POST("/confirmations/:id", d.authMiddleware, d.confirmationHandler.Confirm)

		// Order routes (protected)
		orders := v1.Group("/orders")
		orders.Use(d.authMiddleware)
		{
			orders.POST("/fulfill", d.idempotencyMiddleware, d.orderHandler.FulfillOrder)
			orders.POST("/cancel", d.orderHandler.CancelOrder)
			orders.POST("/unlock", d.orderHandler.SendUnlock)
			orders.POST("/patch", d.orderHandler.PatchTakeOrder)
			orders.POST("/:id/cancel-message", d.orderHandler.SendOrderCancel)
		}

		// Admin routes (protected, role checked per operation)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware)
		{
			admin.PUT("/pause", d.adminHandler.SetPaused)
			admin.PUT("/flash-fee", d.adminHandler.SetFlashFee)
			admin.PUT("/global-fees", d.adminHandler.SetGlobalFees)
			admin.PUT("/balances", d.adminHandler.SetTokenBalance)
			admin.PUT("/defi-controllers", d.adminHandler.SetDefiController)
			admin.POST("/transfer", d.adminHandler.TransferAdmin)
			admin.PUT("/submissions/:id/block", d.adminHandler.BlockSubmission)

			admin.PUT("/chains/:chainId", d.assetHandler.UpdateChainSupport)
			admin.PUT("/chains/:chainId/direction", d.assetHandler.SetChainDirection)
			admin.POST("/assets", d.assetHandler.DeployAsset)
			admin.PUT("/assets/:id", d.assetHandler.UpdateAsset)
			admin.PUT("/assets/:id/fees/:chainId", d.assetHandler.UpdateAssetFixedFee)
			admin.POST("/assets/:id/withdraw-fee", d.transferHandler.WithdrawFee)

			admin.PUT("/confirmations/params", d.confirmationHandler.SetParams)
			admin.POST("/oracles", d.confirmationHandler.AddOracle)
			admin.PUT("/oracles/:address", d.confirmationHandler.UpdateOracle)
			admin.DELETE("/oracles/:address", d.confirmationHandler.RemoveOracle)
			admin.POST("/aggregators", d.confirmationHandler.SetAggregator)
			admin.PUT("/aggregators/:version", d.confirmationHandler.ManageOldAggregator)

			admin.PUT("/order-sources/:chainId", d.orderHandler.SetAuthorizedSrcContract)
		}
	}
}
