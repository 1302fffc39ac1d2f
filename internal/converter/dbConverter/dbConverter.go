package dbConverter

import (
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/model/dbModel"
)

func ConvertFirm(dbFirm dbModel.Firm) model.Firm {
	return model.Firm{
		ID:          dbFirm.ID,
		Name:        dbFirm.Name,
		Cash:        dbFirm.Cash,
		Assets:      dbFirm.Assets,
		Liabilities: dbFirm.Liabilities,
		Revenue:     dbFirm.Revenue,
		Expenses:    dbFirm.Expenses,
		ProfitLoss:  dbFirm.ProfitLoss,
		CreatedAt:   dbFirm.DtCreate,
	}
}

func ConvertShareholder(dbShareholder dbModel.Shareholder) model.Shareholder {
	return model.Shareholder{
		ID:         dbShareholder.ID,
		FirmID:     dbShareholder.FirmID,
		Name:       dbShareholder.Name,
		Email:      dbShareholder.Email,
		Ownership:  dbShareholder.Ownership,
		Investment: dbShareholder.Investment,
		Status:     model.ShareholderStatus(dbShareholder.Status),
		CreatedAt:  dbShareholder.DtCreate,
	}
}

func ConvertPosition(dbPosition dbModel.Position) model.Position {
	return model.Position{
		ID:                   dbPosition.ID,
		FirmID:               dbPosition.FirmID,
		Ticker:               dbPosition.Ticker,
		TotalShares:          dbPosition.TotalShares,
		TotalInvested:        dbPosition.TotalInvested,
		AveragePurchasePrice: dbPosition.AveragePurchasePrice,
		CurrentPrice:         dbPosition.CurrentPrice,
		RealizedProfitLoss:   dbPosition.RealizedProfitLoss,
		DividendYield:        dbPosition.DividendYield,
		UpdatedAt:            dbPosition.DtUpdate,
	}
}

func ConvertTransaction(dbTransaction dbModel.Transaction) model.Transaction {
	tx := model.Transaction{
		ID:                 dbTransaction.ID,
		FirmID:             dbTransaction.FirmID,
		Ticker:             dbTransaction.Ticker,
		Shares:             dbTransaction.Shares,
		PricePerShare:      dbTransaction.PricePerShare,
		TotalValue:         dbTransaction.TotalValue,
		Type:               model.TransactionType(dbTransaction.TransactionType),
		CostBasis:          dbTransaction.CostBasis,
		RealizedProfitLoss: dbTransaction.RealizedProfitLoss,
		PortionOfPosition:  dbTransaction.PortionOfPosition,
		Fees:               dbTransaction.Fees,
		CreatedAt:          dbTransaction.DtCreate,
	}
	if dbTransaction.Notes != nil {
		tx.Notes = *dbTransaction.Notes
	}
	return tx
}
